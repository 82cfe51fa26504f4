// Package checkout converts a price-frozen cart and a tendered payment into a ledger sale.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	poserrors "github.com/abgdnv/tillpos/internal/errors"
	"github.com/abgdnv/tillpos/internal/idgen"
	"github.com/abgdnv/tillpos/internal/ledger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultPaymentMethod is used when Commit is called without a payment method.
const DefaultPaymentMethod = "Cash"

// Coordinator defines the sale commit operation.
type Coordinator interface {
	// Commit records the cart as a sale and returns it.
	// Returns ErrEmptyCart if no line survives filtering, ErrInsufficientPayment if
	// tendered is below the total and ErrWrite if the ledger could not be written.
	// On error the caller keeps its cart; on success it should discard it.
	Commit(ctx context.Context, lines []CartLine, tendered decimal.Decimal, paymentMethod string) (*ledger.Sale, error)
}

// Service implements Coordinator. It never reads or writes the catalog.
type Service struct {
	ledger       ledger.Ledger
	newID        func(prefix string) string
	now          func() time.Time
	logger       *slog.Logger
	salesCounter metric.Int64Counter
	salesAmount  metric.Float64Counter
}

// NewService creates a new instance of Coordinator appending to the provided ledger.
func NewService(l ledger.Ledger, logger *slog.Logger) *Service {
	meter := otel.Meter("tillpos/checkout")
	salesCounter, err := meter.Int64Counter("sales_committed", metric.WithDescription("Total number of committed sales"))
	if err != nil {
		panic(fmt.Sprintf("failed to create sales_committed counter: %v", err))
	}
	salesAmount, err := meter.Float64Counter("sales_amount", metric.WithDescription("Total amount of committed sales"))
	if err != nil {
		panic(fmt.Sprintf("failed to create sales_amount counter: %v", err))
	}
	return &Service{
		ledger:       l,
		newID:        idgen.New,
		now:          time.Now,
		logger:       logger.With("component", "checkout"),
		salesCounter: salesCounter,
		salesAmount:  salesAmount,
	}
}

func (s *Service) Commit(ctx context.Context, lines []CartLine, tendered decimal.Decimal, paymentMethod string) (*ledger.Sale, error) {
	if len(lines) == 0 {
		return nil, poserrors.ErrEmptyCart
	}
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	items := make([]ledger.SaleItem, 0, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		if !line.valid() {
			if line.Quantity > 0 {
				s.logger.WarnContext(ctx, "Skipping malformed cart line", "index", i, "productID", line.ProductID)
			}
			continue
		}
		item := ledger.SaleItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
		items = append(items, item)
		total = total.Add(item.Subtotal())
	}
	if len(items) == 0 {
		return nil, poserrors.ErrEmptyCart
	}

	if tendered.IsNegative() {
		return nil, fmt.Errorf("%w: amount tendered cannot be negative", poserrors.ErrValidation)
	}
	if tendered.LessThan(total) {
		s.logger.WarnContext(ctx, "Insufficient payment", "total", total.String(), "tendered", tendered.String())
		return nil, fmt.Errorf("%w: total %s, tendered %s", poserrors.ErrInsufficientPayment, total, tendered)
	}

	sale := ledger.Sale{
		SaleID:         s.newID(idgen.SalePrefix),
		Timestamp:      s.now().Format(ledger.TimestampLayout),
		Items:          items,
		TotalAmount:    total,
		PaymentMethod:  paymentMethod,
		AmountTendered: tendered,
		ChangeGiven:    tendered.Sub(total),
	}

	if err := s.ledger.Append(ctx, sale); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit sale", "saleID", sale.SaleID, "error", err)
		if errors.Is(err, poserrors.ErrWrite) {
			return nil, fmt.Errorf("failed to commit sale: %w", err)
		}
		return nil, fmt.Errorf("%w: failed to commit sale: %w", poserrors.ErrWrite, err)
	}

	attrs := metric.WithAttributes(attribute.String("payment_method", paymentMethod))
	s.salesCounter.Add(ctx, 1, attrs)
	s.salesAmount.Add(ctx, total.InexactFloat64(), attrs)
	s.logger.InfoContext(ctx, "Sale committed", "saleID", sale.SaleID, "total", total.String(), "items", len(items))
	return &sale, nil
}
