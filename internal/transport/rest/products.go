package rest

import (
	"net/http"
	"strconv"

	"github.com/abgdnv/tillpos/internal/catalog"
	"github.com/abgdnv/tillpos/pkg/web"
	"github.com/shopspring/decimal"
)

// ProductRequest is the body of product create and update requests.
type ProductRequest struct {
	Name  string          `json:"name"  validate:"required,max=100"`
	Price decimal.Decimal `json:"price"`
	SKU   string          `json:"sku"   validate:"max=64"`
}

// ListProducts returns active products, or every product with ?all=true.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	var (
		list []catalog.Product
		err  error
	)
	if all {
		list, err = h.catalog.List(r.Context())
	} else {
		list, err = h.catalog.ListActive(r.Context())
	}
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list), "all", all)
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// GetProduct retrieves an active product by its ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathID(w, r, h.logger)
	if !ok {
		return
	}
	found, err := h.catalog.GetActive(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// AddProduct handles the creation of a new product.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &req) {
		return
	}
	created, err := h.catalog.Add(r.Context(), req.Name, req.Price, req.SKU)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// UpdateProduct changes name, price and SKU of a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathID(w, r, h.logger)
	if !ok {
		return
	}
	var req ProductRequest
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &req) {
		return
	}
	updated, err := h.catalog.Update(r.Context(), id, req.Name, req.Price, req.SKU)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// RemoveProduct retires a product.
func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.catalog.Remove(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, "Failed to remove product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product removed successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}
