// Package rest provides HTTP handlers for the catalog, cart and sales operations.
package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/tillpos/internal/catalog"
	"github.com/abgdnv/tillpos/internal/checkout"
	poserrors "github.com/abgdnv/tillpos/internal/errors"
	"github.com/abgdnv/tillpos/internal/ledger"
	"github.com/abgdnv/tillpos/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

type Handler struct {
	catalog     catalog.Catalog
	ledger      ledger.Ledger
	coordinator checkout.Coordinator
	location    *time.Location
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewHandler creates a new instance of Handler. Date query parameters are read in loc.
func NewHandler(cat catalog.Catalog, led ledger.Ledger, coordinator checkout.Coordinator, loc *time.Location, logger *slog.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		catalog:     cat,
		ledger:      led,
		coordinator: coordinator,
		location:    loc,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the till.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.AddProduct)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProduct)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.RemoveProduct)
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Post("/items", h.AddCartItem)
		r.Put("/items/{id}", h.SetCartItemQuantity)
	})

	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Get("/", h.ListSales)
		r.Post("/", h.CommitSale)
		r.Get("/summary", h.SalesSummary)
		r.Get("/{id}", h.GetSale)
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.Ready)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Ready checks that both collections can be read and decoded.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		_, err := h.catalog.List(ctx)
		return err
	})
	eg.Go(func() error {
		_, err := h.ledger.ListByRange(ctx, nil, nil)
		return err
	})
	if err := eg.Wait(); err != nil {
		h.logger.ErrorContext(r.Context(), "Readiness probe failed: collections are not readable", "error", err)
		http.Error(w, "Service Unavailable: collections are not readable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// respondServiceError maps the error taxonomy to an HTTP status and writes it.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, poserrors.ErrInsufficientPayment):
		status = http.StatusUnprocessableEntity
		message = "Amount tendered is less than the total"
	case errors.Is(err, poserrors.ErrEmptyCart):
		status = http.StatusBadRequest
		message = "Cart is empty"
	case errors.Is(err, poserrors.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, poserrors.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, poserrors.ErrLock):
		status = http.StatusServiceUnavailable
		message = "Storage is busy, try again"
	}

	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), message, "error", err)
	} else {
		h.logger.WarnContext(r.Context(), message, "error", err)
	}
	web.RespondError(w, h.logger, status, message)
}
