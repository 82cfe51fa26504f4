package rest

import (
	"net/http"

	"github.com/abgdnv/tillpos/internal/checkout"
	"github.com/abgdnv/tillpos/pkg/web"
	"github.com/shopspring/decimal"
)

// CommitSaleRequest is the caller's price-frozen cart and the payment.
type CommitSaleRequest struct {
	Cart           checkout.Cart   `json:"cart"`
	AmountTendered decimal.Decimal `json:"amountTendered"`
	PaymentMethod  string          `json:"paymentMethod" validate:"max=32"`
}

// CommitSale records the cart as a sale.
func (h *Handler) CommitSale(w http.ResponseWriter, r *http.Request) {
	var req CommitSaleRequest
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &req) {
		return
	}
	sale, err := h.coordinator.Commit(r.Context(), req.Cart, req.AmountTendered, req.PaymentMethod)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to record sale")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusCreated, sale)
}

// ListSales returns sales between the optional start and end dates, most recent first.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	start, ok := web.ParseOptionalDate(r, w, h.logger, "start", h.location)
	if !ok {
		return
	}
	end, ok := web.ParseOptionalDate(r, w, h.logger, "end", h.location)
	if !ok {
		return
	}
	limit, ok := web.ParseOptionalGt(r, w, h.logger, "limit", 0)
	if !ok {
		return
	}

	sales, err := h.ledger.ListByRange(r.Context(), start, end)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch sales")
		return
	}
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	web.RespondJSON(w, h.logger, http.StatusOK, sales)
}

// SalesSummary aggregates sales between the optional start and end dates.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	start, ok := web.ParseOptionalDate(r, w, h.logger, "start", h.location)
	if !ok {
		return
	}
	end, ok := web.ParseOptionalDate(r, w, h.logger, "end", h.location)
	if !ok {
		return
	}
	summary, err := h.ledger.Summarize(r.Context(), start, end)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to summarize sales")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, summary)
}

// GetSale retrieves a sale by its ID.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathID(w, r, h.logger)
	if !ok {
		return
	}
	sale, err := h.ledger.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve sale")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, sale)
}
