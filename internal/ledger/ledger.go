// Package ledger provides the append-only record of completed sales.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/abgdnv/tillpos/internal/docstore"
	poserrors "github.com/abgdnv/tillpos/internal/errors"
	"github.com/shopspring/decimal"
)

// Collection is the document store collection holding sales.
const Collection = "sales"

// Ledger defines the methods for recording and querying sales.
// Sales are never updated or deleted.
type Ledger interface {
	// Append adds a sale to the end of the ledger.
	Append(ctx context.Context, sale Sale) error

	// ListByRange returns sales from the start of the start day to the end of the end day,
	// most recent first. A nil bound is open.
	ListByRange(ctx context.Context, start, end *time.Time) ([]Sale, error)

	// GetByID retrieves a sale by its ID.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	GetByID(ctx context.Context, saleID string) (*Sale, error)

	// Summarize aggregates the sales ListByRange would return.
	Summarize(ctx context.Context, start, end *time.Time) (*Summary, error)
}

// Service implements Ledger on top of a docstore.Store.
type Service struct {
	store    docstore.Store
	location *time.Location
	logger   *slog.Logger
}

// NewService creates a new instance of Ledger. Day bounds of range queries are taken in loc.
func NewService(store docstore.Store, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:    store,
		location: loc,
		logger:   logger.With("component", "ledger"),
	}
}

// Location returns the location used for day bounds.
func (s *Service) Location() *time.Location {
	return s.location
}

func (s *Service) Append(ctx context.Context, sale Sale) error {
	if sale.SaleID == "" {
		return fmt.Errorf("%w: sale ID is required", poserrors.ErrValidation)
	}
	err := docstore.Mutate(ctx, s.store, Collection, func(sales []Sale) ([]Sale, error) {
		return append(sales, sale), nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to append sale", "saleID", sale.SaleID, "error", err)
		return fmt.Errorf("failed to append sale %s: %w", sale.SaleID, err)
	}
	return nil
}

func (s *Service) ListByRange(ctx context.Context, start, end *time.Time) ([]Sale, error) {
	sales, err := docstore.ReadAll[Sale](ctx, s.store, Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}

	var from, to int64
	bounded := start != nil || end != nil
	if start != nil {
		y, m, d := start.Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, s.location).Unix()
	}
	if end != nil {
		y, m, d := end.Date()
		to = time.Date(y, m, d, 23, 59, 59, 0, s.location).Unix()
	}

	type entry struct {
		sale Sale
		ts   int64
		ok   bool
	}
	entries := make([]entry, 0, len(sales))
	for _, sale := range sales {
		t, err := sale.Time()
		ok := err == nil
		if !ok {
			if bounded {
				s.logger.WarnContext(ctx, "Skipping sale with unparseable timestamp", "saleID", sale.SaleID, "timestamp", sale.Timestamp)
				continue
			}
		} else {
			ts := t.Unix()
			if start != nil && ts < from {
				continue
			}
			if end != nil && ts > to {
				continue
			}
		}
		e := entry{sale: sale, ok: ok}
		if ok {
			e.ts = t.Unix()
		}
		entries = append(entries, e)
	}

	// Most recent first, ties in store order, unparseable timestamps last.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ok != entries[j].ok {
			return entries[i].ok
		}
		return entries[i].ts > entries[j].ts
	})

	result := make([]Sale, len(entries))
	for i, e := range entries {
		result[i] = e.sale
	}
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, saleID string) (*Sale, error) {
	sales, err := docstore.ReadAll[Sale](ctx, s.store, Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}
	for _, sale := range sales {
		if sale.SaleID == saleID {
			return &sale, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", poserrors.ErrSaleNotFound, saleID)
}

func (s *Service) Summarize(ctx context.Context, start, end *time.Time) (*Summary, error) {
	sales, err := s.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	summary := &Summary{TotalAmount: decimal.Zero}
	for _, sale := range sales {
		summary.Count++
		summary.TotalAmount = summary.TotalAmount.Add(sale.TotalAmount)
		for _, item := range sale.Items {
			summary.ItemsSold += item.Quantity
		}
	}
	return summary, nil
}
