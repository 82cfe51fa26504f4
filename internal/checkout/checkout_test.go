package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/tillpos/internal/catalog"
	"github.com/abgdnv/tillpos/internal/docstore"
	poserrors "github.com/abgdnv/tillpos/internal/errors"
	"github.com/abgdnv/tillpos/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockLedger is a mock implementation of the ledger.Ledger interface
type mockLedger struct {
	appended []ledger.Sale
	error    error
}

func (m *mockLedger) Append(_ context.Context, sale ledger.Sale) error {
	if m.error != nil {
		return m.error
	}
	m.appended = append(m.appended, sale)
	return nil
}

func (m *mockLedger) ListByRange(_ context.Context, _, _ *time.Time) ([]ledger.Sale, error) {
	return m.appended, m.error
}

func (m *mockLedger) GetByID(_ context.Context, _ string) (*ledger.Sale, error) {
	return nil, poserrors.ErrSaleNotFound
}

func (m *mockLedger) Summarize(_ context.Context, _, _ *time.Time) (*ledger.Summary, error) {
	return &ledger.Summary{}, m.error
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(id, price string, qty int) CartLine {
	return CartLine{ProductID: id, Name: "Product " + id, UnitPrice: dec(price), Quantity: qty}
}

func newFileServices(t *testing.T) (*catalog.Service, *ledger.Service) {
	t.Helper()
	store, err := docstore.NewFileStore(t.TempDir(), time.Millisecond, 0, discard)
	require.NoError(t, err)
	return catalog.NewService(store, discard), ledger.NewService(store, time.UTC, discard)
}

func Test_Coordinator_Commit(t *testing.T) {
	fixedNow := time.Date(2025, 4, 7, 14, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	testCases := []struct {
		name           string
		lines          []CartLine
		tendered       string
		method         string
		ledgerErr      error
		expectError    []error
		expectTotal    string
		expectChange   string
		expectMethod   string
		expectItemsLen int
	}{
		{
			name:           "Success - totals and change",
			lines:          []CartLine{line("a", "100", 2), line("b", "50", 1)},
			tendered:       "300",
			expectTotal:    "250",
			expectChange:   "50",
			expectMethod:   DefaultPaymentMethod,
			expectItemsLen: 2,
		},
		{
			name:           "Success - exact payment with card",
			lines:          []CartLine{line("a", "0.10", 3)},
			tendered:       "0.30",
			method:         "Card",
			expectTotal:    "0.3",
			expectChange:   "0",
			expectMethod:   "Card",
			expectItemsLen: 1,
		},
		{
			name:           "Success - malformed and zero-quantity lines skipped",
			lines:          []CartLine{line("a", "5", 1), {Name: "no id", UnitPrice: dec("1"), Quantity: 1}, line("c", "-1", 1), line("d", "7", 0)},
			tendered:       "5",
			expectTotal:    "5",
			expectChange:   "0",
			expectMethod:   DefaultPaymentMethod,
			expectItemsLen: 1,
		},
		{
			name:        "Error - empty cart",
			lines:       nil,
			tendered:    "10",
			expectError: []error{poserrors.ErrEmptyCart, poserrors.ErrValidation},
		},
		{
			name:        "Error - every quantity zero or negative",
			lines:       []CartLine{line("a", "1", 0), line("b", "1", -2)},
			tendered:    "10",
			expectError: []error{poserrors.ErrEmptyCart},
		},
		{
			name:        "Error - only malformed lines",
			lines:       []CartLine{{ProductID: "a", Quantity: 1}},
			tendered:    "10",
			expectError: []error{poserrors.ErrEmptyCart},
		},
		{
			name:        "Error - insufficient payment",
			lines:       []CartLine{line("a", "100", 1)},
			tendered:    "99",
			expectError: []error{poserrors.ErrInsufficientPayment, poserrors.ErrValidation},
		},
		{
			name:        "Error - negative tendered",
			lines:       []CartLine{line("a", "0", 1)},
			tendered:    "-1",
			expectError: []error{poserrors.ErrValidation},
		},
		{
			name:        "Error - ledger lock failure is a write error",
			lines:       []CartLine{line("a", "1", 1)},
			tendered:    "1",
			ledgerErr:   fmt.Errorf("failed to append sale: %w", poserrors.ErrLock),
			expectError: []error{poserrors.ErrWrite, poserrors.ErrLock},
		},
		{
			name:        "Error - ledger write failure",
			lines:       []CartLine{line("a", "1", 1)},
			tendered:    "1",
			ledgerErr:   fmt.Errorf("failed to append sale: %w", poserrors.ErrWrite),
			expectError: []error{poserrors.ErrWrite},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := &mockLedger{error: tc.ledgerErr}
			svc := NewService(l, discard)
			svc.now = func() time.Time { return fixedNow }
			svc.newID = func(prefix string) string { return prefix + "test" }

			sale, err := svc.Commit(context.Background(), tc.lines, dec(tc.tendered), tc.method)
			if tc.expectError != nil {
				require.Error(t, err)
				for _, want := range tc.expectError {
					assert.ErrorIs(t, err, want)
				}
				assert.Nil(t, sale)
				assert.Empty(t, l.appended)
				return
			}

			require.NoError(t, err)
			require.Len(t, l.appended, 1)
			assert.Equal(t, *sale, l.appended[0])
			assert.Equal(t, "sale_test", sale.SaleID)
			assert.Equal(t, "2025-04-07T14:30:00+05:30", sale.Timestamp)
			assert.True(t, dec(tc.expectTotal).Equal(sale.TotalAmount), "total %s", sale.TotalAmount)
			assert.True(t, dec(tc.expectChange).Equal(sale.ChangeGiven), "change %s", sale.ChangeGiven)
			assert.True(t, dec(tc.tendered).Equal(sale.AmountTendered))
			assert.Equal(t, tc.expectMethod, sale.PaymentMethod)
			assert.Len(t, sale.Items, tc.expectItemsLen)
		})
	}
}

func Test_Coordinator_Commit_PreservesLineSnapshot(t *testing.T) {
	l := &mockLedger{}
	svc := NewService(l, discard)
	lines := []CartLine{line("a", "100", 2), line("b", "50", 1)}

	sale, err := svc.Commit(context.Background(), lines, dec("300"), "")
	require.NoError(t, err)
	require.Len(t, sale.Items, 2)
	for i, item := range sale.Items {
		assert.Equal(t, lines[i].ProductID, item.ProductID)
		assert.Equal(t, lines[i].Name, item.Name)
		assert.True(t, lines[i].UnitPrice.Equal(item.UnitPrice))
		assert.Equal(t, lines[i].Quantity, item.Quantity)
	}
	_, err = sale.Time()
	assert.NoError(t, err)
}

func Test_Coordinator_Commit_CatalogPriceChangeAfterAdd(t *testing.T) {
	ctx := context.Background()
	cat, led := newFileServices(t)
	svc := NewService(led, discard)

	p, err := cat.Add(ctx, "Coffee", dec("100"), "COF")
	require.NoError(t, err)
	var cart Cart
	cart, err = cart.Add(*p, 2)
	require.NoError(t, err)

	_, err = cat.Update(ctx, p.ID, "Coffee", dec("999"), "COF")
	require.NoError(t, err)

	sale, err := svc.Commit(ctx, cart, dec("300"), "")
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.True(t, dec("100").Equal(sale.Items[0].UnitPrice))
	assert.Equal(t, 2, sale.Items[0].Quantity)
	assert.True(t, dec("200").Equal(sale.TotalAmount))
	assert.True(t, dec("100").Equal(sale.ChangeGiven))

	stored, err := led.GetByID(ctx, sale.SaleID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(stored.Items[0].UnitPrice))

	current, err := cat.GetActive(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, dec("999").Equal(current.Price), "catalog is not touched by commit")
}

func Test_Coordinator_Commit_RejectionsLeaveLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	_, led := newFileServices(t)
	svc := NewService(led, discard)

	_, err := svc.Commit(ctx, []CartLine{line("a", "10", 1)}, dec("10"), "")
	require.NoError(t, err)

	_, err = svc.Commit(ctx, Cart{}, dec("10"), "")
	assert.ErrorIs(t, err, poserrors.ErrEmptyCart)

	_, err = svc.Commit(ctx, []CartLine{line("a", "100", 1)}, dec("99"), "")
	assert.ErrorIs(t, err, poserrors.ErrInsufficientPayment)

	all, err := led.ListByRange(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func Test_Coordinator_Commit_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	svc := NewService(&mockLedger{}, discard)
	_, err := svc.Commit(context.Background(), []CartLine{line("a", "2.5", 2)}, dec("5"), "")
	require.NoError(t, err)
	_, err = svc.Commit(context.Background(), nil, dec("5"), "")
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var committed int64
	var amount float64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if m.Name == "sales_committed" {
					for _, dp := range data.DataPoints {
						committed += dp.Value
					}
				}
			case metricdata.Sum[float64]:
				if m.Name == "sales_amount" {
					for _, dp := range data.DataPoints {
						amount += dp.Value
					}
				}
			}
		}
	}
	assert.Equal(t, int64(1), committed)
	assert.InDelta(t, 5.0, amount, 1e-9)
}

func Test_Coordinator_Commit_WriteFailureKeepsCart(t *testing.T) {
	errDisk := errors.New("disk full")
	svc := NewService(&mockLedger{error: errDisk}, discard)
	cart := Cart{line("a", "1", 1)}

	_, err := svc.Commit(context.Background(), cart, dec("1"), "")
	assert.ErrorIs(t, err, poserrors.ErrWrite)
	assert.ErrorIs(t, err, errDisk)
	assert.Len(t, cart, 1)
}
