package rest

import (
	"net/http"

	"github.com/abgdnv/tillpos/internal/checkout"
	"github.com/abgdnv/tillpos/pkg/web"
	"github.com/shopspring/decimal"
)

// The server keeps no cart: the caller sends its cart with every request and
// stores the cart returned in the response.

// AddCartItemRequest adds a catalog product to the caller's cart.
type AddCartItemRequest struct {
	Cart      checkout.Cart `json:"cart"`
	ProductID string        `json:"productId" validate:"required"`
	Quantity  int           `json:"quantity"  validate:"required,min=1"`
}

// SetCartItemQuantityRequest changes the quantity of a cart line; 0 removes it.
type SetCartItemQuantityRequest struct {
	Cart     checkout.Cart `json:"cart"`
	Quantity int           `json:"quantity" validate:"min=0"`
}

// CartResponse is the updated cart and its total.
type CartResponse struct {
	Cart  checkout.Cart   `json:"cart"`
	Total decimal.Decimal `json:"total"`
}

// AddCartItem snapshots the current catalog name and price of a product into the cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &req) {
		return
	}
	product, err := h.catalog.GetActive(r.Context(), req.ProductID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to add item to cart")
		return
	}
	cart, err := req.Cart.Add(*product, req.Quantity)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to add item to cart")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, newCartResponse(cart))
}

// SetCartItemQuantity updates a cart line without consulting the catalog.
func (h *Handler) SetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathID(w, r, h.logger)
	if !ok {
		return
	}
	var req SetCartItemQuantityRequest
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &req) {
		return
	}
	cart, err := req.Cart.SetQuantity(id, req.Quantity)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update cart")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, newCartResponse(cart))
}

func newCartResponse(cart checkout.Cart) CartResponse {
	if cart == nil {
		cart = checkout.Cart{}
	}
	return CartResponse{Cart: cart, Total: cart.Total()}
}
