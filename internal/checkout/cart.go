package checkout

import (
	"fmt"

	"github.com/abgdnv/tillpos/internal/catalog"
	poserrors "github.com/abgdnv/tillpos/internal/errors"
	"github.com/shopspring/decimal"
)

// CartLine is a product selection whose name and unit price were captured when it was added.
// The price is never refreshed from the catalog afterwards.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// NewCartLine snapshots an active product into a cart line.
func NewCartLine(p catalog.Product, quantity int) (CartLine, error) {
	if quantity < 1 {
		return CartLine{}, fmt.Errorf("%w: quantity must be at least 1", poserrors.ErrValidation)
	}
	if !p.IsActive() {
		return CartLine{}, fmt.Errorf("%w: %s", poserrors.ErrProductNotFound, p.ID)
	}
	return CartLine{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: quantity}, nil
}

func (l CartLine) valid() bool {
	return l.ProductID != "" && l.Name != "" && !l.UnitPrice.IsNegative() && l.Quantity > 0
}

// Cart is a caller-owned, ordered list of cart lines. Methods never modify the receiver,
// they return the updated cart.
type Cart []CartLine

// Add puts quantity units of p into the cart. A product already in the cart keeps
// the unit price frozen when it was first added and only its quantity grows.
func (c Cart) Add(p catalog.Product, quantity int) (Cart, error) {
	line, err := NewCartLine(p, quantity)
	if err != nil {
		return c, err
	}
	out := c.clone()
	for i := range out {
		if out[i].ProductID == p.ID {
			out[i].Quantity += quantity
			return out, nil
		}
	}
	return append(out, line), nil
}

// SetQuantity changes the quantity of a line; a quantity below 1 removes it.
// Returns ErrProductNotFound if the product is not in the cart.
func (c Cart) SetQuantity(productID string, quantity int) (Cart, error) {
	if quantity < 1 {
		return c.Remove(productID), nil
	}
	out := c.clone()
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = quantity
			return out, nil
		}
	}
	return c, fmt.Errorf("%w in cart: %s", poserrors.ErrProductNotFound, productID)
}

// Remove drops the line for productID, if any.
func (c Cart) Remove(productID string) Cart {
	out := make(Cart, 0, len(c))
	for _, l := range c {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}

// Total returns the sum of unit price times quantity over valid lines.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c {
		if l.valid() {
			total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return total
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
