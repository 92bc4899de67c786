package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/api/responses"
	"github.com/karimelbaz/sallati-backend/api/validators"
	"github.com/karimelbaz/sallati-backend/internal/catalog"
	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
	"github.com/karimelbaz/sallati-backend/pkg/pagination"
	"github.com/karimelbaz/sallati-backend/pkg/types"
)

type categoryResponse struct {
	ID       uuid.UUID           `json:"id"`
	Slug     string              `json:"slug"`
	Name     types.LocalizedText `json:"name"`
	ImageURL *string             `json:"image_url,omitempty"`
	Position int                 `json:"position"`
}

type supplierResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        types.LocalizedText `json:"name"`
	DeliveryFee types.Money         `json:"delivery_fee"`
	LogoURL     *string             `json:"logo_url,omitempty"`
}

type productResponse struct {
	ID            uuid.UUID            `json:"id"`
	SupplierID    uuid.UUID            `json:"supplier_id"`
	CategoryID    uuid.UUID            `json:"category_id"`
	Name          types.LocalizedText  `json:"name"`
	Description   *types.LocalizedText `json:"description,omitempty"`
	Price         types.Money          `json:"price"`
	DiscountPrice *types.Money         `json:"discount_price,omitempty"`
	MaxQty        *int                 `json:"max_qty_per_order,omitempty"`
	Tags          []string             `json:"tags"`
	ImageURL      *string              `json:"image_url,omitempty"`
	IsFeatured    bool                 `json:"is_featured"`
	Supplier      *supplierResponse    `json:"supplier,omitempty"`
}

type productPageResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newSupplierResponse(supplier *models.Supplier) *supplierResponse {
	if supplier == nil {
		return nil
	}
	return &supplierResponse{
		ID:          supplier.ID,
		Name:        supplier.Name,
		DeliveryFee: types.MoneyFromCents(supplier.DeliveryFeeCents),
		LogoURL:     supplier.LogoURL,
	}
}

func newProductResponse(product models.Product) productResponse {
	resp := productResponse{
		ID:          product.ID,
		SupplierID:  product.SupplierID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Description: product.Description,
		Price:       types.MoneyFromCents(product.PriceCents),
		MaxQty:      product.MaxQtyPerOrder,
		Tags:        []string(product.Tags),
		ImageURL:    product.ImageURL,
		IsFeatured:  product.IsFeatured,
		Supplier:    newSupplierResponse(product.Supplier),
	}
	if product.DiscountPriceCents != nil {
		discounted := types.MoneyFromCents(*product.DiscountPriceCents)
		resp.DiscountPrice = &discounted
	}
	return resp
}

func ListCategories(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]categoryResponse, 0, len(categories))
		for _, category := range categories {
			out = append(out, categoryResponse{
				ID:       category.ID,
				Slug:     category.Slug,
				Name:     category.Name,
				ImageURL: category.ImageURL,
				Position: category.Position,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

func ListProducts(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseQueryUUID(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		featured, err := validators.ParseQueryBool(r, "featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), catalog.ProductFilter{
			CategoryID:   categoryID,
			SupplierID:   supplierID,
			FeaturedOnly: featured,
			Tag:          strings.TrimSpace(r.URL.Query().Get("tag")),
			Limit:        limit,
			Cursor:       strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := productPageResponse{
			Products:   make([]productResponse, 0, len(page.Products)),
			NextCursor: page.NextCursor,
		}
		for _, product := range page.Products {
			resp.Products = append(resp.Products, newProductResponse(product))
		}
		responses.WriteSuccess(w, resp)
	}
}

func GetProduct(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

