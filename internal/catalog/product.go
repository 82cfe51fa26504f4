package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// State is the lifecycle state of a product.
type State int

const (
	// StateActive products are visible to every catalog read.
	StateActive State = iota
	// StateRetired products are soft-deleted: kept in storage for sales history, hidden from reads.
	StateRetired
)

func (s State) String() string {
	if s == StateRetired {
		return "retired"
	}
	return "active"
}

// Product represents a sellable item in the catalog.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	SKU   string
	State State
}

// IsActive reports whether the product is visible to catalog reads.
func (p Product) IsActive() bool {
	return p.State == StateActive
}

// storedProduct is the on-disk shape. A record without "active" is active.
type storedProduct struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	SKU    string          `json:"sku"`
	Active *bool           `json:"active,omitempty"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	active := p.IsActive()
	return json.Marshal(storedProduct{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		SKU:    p.SKU,
		Active: &active,
	})
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var sp storedProduct
	if err := json.Unmarshal(data, &sp); err != nil {
		return err
	}
	state := StateActive
	if sp.Active != nil && !*sp.Active {
		state = StateRetired
	}
	*p = Product{ID: sp.ID, Name: sp.Name, Price: sp.Price, SKU: sp.SKU, State: state}
	return nil
}
