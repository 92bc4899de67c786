package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/internal/cart"
	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/pagination"
)

type repo interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ProductPage is one page of the browse listing.
type ProductPage struct {
	Products   []models.Product
	NextCursor string
}

// Service exposes catalog browsing to the API layer.
type Service struct {
	repo repo
}

func NewService(repo repo) *Service {
	return &Service{repo: repo}
}

// ListCategories returns the active category tree for the storefront home.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// ListProducts pages the catalog and encodes the cursor for the next page.
func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	limit := pagination.NormalizeLimit(filter.Limit)
	filter.Limit = limit

	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := &ProductPage{Products: products}
	if len(products) > limit {
		page.Products = products[:limit]
		last := page.Products[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// GetProduct loads one product for the detail view.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// CartProduct converts a catalog row into the snapshot a cart line carries.
// Inactive products cannot be added.
func (s *Service) CartProduct(ctx context.Context, id uuid.UUID) (*cart.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	snapshot := &cart.Product{
		ID:                 product.ID,
		SupplierID:         product.SupplierID,
		Name:               product.Name,
		PriceCents:         product.PriceCents,
		DiscountPriceCents: product.DiscountPriceCents,
		MaxQtyPerOrder:     product.MaxQtyPerOrder,
		ImageURL:           product.ImageURL,
	}
	if product.Supplier != nil {
		snapshot.Supplier = &cart.SupplierSummary{
			ID:               product.Supplier.ID,
			Name:             product.Supplier.Name,
			DeliveryFeeCents: product.Supplier.DeliveryFeeCents,
		}
	}
	return snapshot, nil
}
