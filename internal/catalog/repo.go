package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimelbaz/sallati-backend/pkg/db"
	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/pagination"
)

// ProductFilter narrows the browse query.
type ProductFilter struct {
	CategoryID   *uuid.UUID
	SupplierID   *uuid.UUID
	FeaturedOnly bool
	Tag          string
	Limit        int
	Cursor       string
}

// Repo reads the storefront catalog.
type Repo struct {
	client *db.Client
}

func NewRepo(client *db.Client) *Repo {
	return &Repo{client: client}
}

// ListCategories returns active categories in display order.
func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.client.DB().WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC, slug ASC").
		Find(&categories).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return categories, nil
}

// ListProducts pages through active products from approved suppliers, newest
// first. It fetches limit+1 rows so the caller can detect the next page.
func (r *Repo) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.client.DB().WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN suppliers ON suppliers.id = products.supplier_id").
		Where("products.is_active = ?", true).
		Where("suppliers.status = ?", enums.SupplierStatusApproved).
		Preload("Supplier")

	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.SupplierID != nil {
		query = query.Where("products.supplier_id = ?", *filter.SupplierID)
	}
	if filter.FeaturedOnly {
		query = query.Where("products.is_featured = ?", true)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(products.tags)", filter.Tag)
	}

	cursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where(
			"(products.created_at, products.id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var products []models.Product
	err = query.
		Order("products.created_at DESC, products.id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&products).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return products, nil
}

// GetProduct loads one active product with its supplier.
func (r *Repo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.client.DB().WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		Preload("Supplier").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding product")
	}
	return &product, nil
}
