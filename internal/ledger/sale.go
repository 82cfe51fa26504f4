package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the layout of Sale.Timestamp.
const TimestampLayout = time.RFC3339

// SaleItem is one line of a sale, with name and unit price as they were at sale time.
type SaleItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns UnitPrice multiplied by Quantity.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is an immutable record of a completed transaction.
type Sale struct {
	SaleID         string          `json:"saleId"`
	Timestamp      string          `json:"timestamp"`
	Items          []SaleItem      `json:"items"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaymentMethod  string          `json:"paymentMethod"`
	AmountTendered decimal.Decimal `json:"amountTendered"`
	ChangeGiven    decimal.Decimal `json:"changeGiven"`
}

// Time parses the sale timestamp.
func (s Sale) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, s.Timestamp)
}

// Summary aggregates a set of sales.
type Summary struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemsSold   int             `json:"itemsSold"`
}
