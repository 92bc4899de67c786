package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/api/middleware"
	"github.com/karimelbaz/sallati-backend/api/responses"
	"github.com/karimelbaz/sallati-backend/api/validators"
	"github.com/karimelbaz/sallati-backend/internal/cart"
	"github.com/karimelbaz/sallati-backend/internal/catalog"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
	"github.com/karimelbaz/sallati-backend/pkg/types"
)

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required"`
}

type updateItemRequest struct {
	Qty int `json:"qty"`
}

type cartProductResponse struct {
	ID            uuid.UUID           `json:"id"`
	SupplierID    uuid.UUID           `json:"supplier_id"`
	Name          types.LocalizedText `json:"name"`
	Price         types.Money         `json:"price"`
	DiscountPrice *types.Money        `json:"discount_price,omitempty"`
	ImageURL      *string             `json:"image_url,omitempty"`
}

type cartItemResponse struct {
	Product  cartProductResponse `json:"product"`
	Qty      int                 `json:"qty"`
	Subtotal types.Money         `json:"subtotal"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Count int                `json:"count"`
	Total types.Money        `json:"total"`
}

type cartGroupResponse struct {
	SupplierID  uuid.UUID            `json:"supplier_id"`
	Supplier    *cartSupplierSummary `json:"supplier,omitempty"`
	Items       []cartItemResponse   `json:"items"`
	Subtotal    types.Money          `json:"subtotal"`
	DeliveryFee *types.Money         `json:"delivery_fee,omitempty"`
}

type cartSupplierSummary struct {
	ID   uuid.UUID           `json:"id"`
	Name types.LocalizedText `json:"name"`
}

func newCartItemResponse(item cart.Item) cartItemResponse {
	resp := cartItemResponse{
		Product: cartProductResponse{
			ID:         item.Product.ID,
			SupplierID: item.Product.SupplierID,
			Name:       item.Product.Name,
			Price:      types.MoneyFromCents(item.Product.PriceCents),
			ImageURL:   item.Product.ImageURL,
		},
		Qty:      item.Qty,
		Subtotal: types.MoneyFromCents(item.SubtotalCents()),
	}
	if item.Product.DiscountPriceCents != nil {
		discounted := types.MoneyFromCents(*item.Product.DiscountPriceCents)
		resp.Product.DiscountPrice = &discounted
	}
	return resp
}

func newCartResponse(c *cart.Cart) (*cartResponse, error) {
	items, err := c.Items()
	if err != nil {
		return nil, err
	}
	count, err := c.Count()
	if err != nil {
		return nil, err
	}
	total, err := c.TotalCents()
	if err != nil {
		return nil, err
	}

	resp := &cartResponse{
		Items: make([]cartItemResponse, 0, len(items)),
		Count: count,
		Total: types.MoneyFromCents(total),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, newCartItemResponse(item))
	}
	return resp, nil
}

func cartForRequest(mgr *cart.Manager, r *http.Request) (*cart.Cart, string) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	return mgr.CartForSession(r.Context(), sessionID), sessionID
}

// cartError converts the released-scope sentinel into a typed API error.
func cartError(err error) error {
	if err == cart.ErrScopeReleased {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart session ended")
	}
	return err
}

func GetCart(mgr *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, _ := cartForRequest(mgr, r)
		resp, err := newCartResponse(c)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func AddCartItem(mgr *cart.Manager, catalogSvc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalogSvc.CartProduct(r.Context(), req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, sessionID := cartForRequest(mgr, r)
		c.Add(*product, req.Qty)
		mgr.Persist(r.Context(), sessionID)

		resp, err := newCartResponse(c)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func UpdateCartItem(mgr *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, sessionID := cartForRequest(mgr, r)
		c.UpdateQuantity(productID, req.Qty)
		mgr.Persist(r.Context(), sessionID)

		resp, err := newCartResponse(c)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func RemoveCartItem(mgr *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		c, sessionID := cartForRequest(mgr, r)
		c.Remove(productID)
		mgr.Persist(r.Context(), sessionID)

		resp, err := newCartResponse(c)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func ClearCart(mgr *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, sessionID := cartForRequest(mgr, r)
		c.Clear()
		mgr.Persist(r.Context(), sessionID)

		resp, err := newCartResponse(c)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GroupedCart returns the checkout view: items partitioned per supplier with
// per-group subtotals.
func GroupedCart(mgr *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, _ := cartForRequest(mgr, r)
		groups, err := c.GroupBySupplier()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}

		out := make([]cartGroupResponse, 0, len(groups))
		for _, group := range groups {
			resp := cartGroupResponse{
				SupplierID: group.SupplierID,
				Items:      make([]cartItemResponse, 0, len(group.Items)),
				Subtotal:   types.MoneyFromCents(group.SubtotalCents),
			}
			if group.Supplier != nil {
				resp.Supplier = &cartSupplierSummary{
					ID:   group.Supplier.ID,
					Name: group.Supplier.Name,
				}
				fee := types.MoneyFromCents(group.Supplier.DeliveryFeeCents)
				resp.DeliveryFee = &fee
			}
			for _, item := range group.Items {
				resp.Items = append(resp.Items, newCartItemResponse(item))
			}
			out = append(out, resp)
		}
		responses.WriteSuccess(w, out)
	}
}

// EndCartSession releases the cart scope for the caller's UI session.
func EndCartSession(mgr *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		mgr.EndSession(r.Context(), sessionID)
		responses.WriteSuccess(w, map[string]string{"status": "session_ended"})
	}
}
