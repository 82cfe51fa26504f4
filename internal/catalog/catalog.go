// Package catalog provides the product catalog backed by a document store collection.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abgdnv/tillpos/internal/docstore"
	poserrors "github.com/abgdnv/tillpos/internal/errors"
	"github.com/abgdnv/tillpos/internal/idgen"
	"github.com/shopspring/decimal"
)

// Collection is the document store collection holding products.
const Collection = "products"

// Catalog defines the methods for managing products.
// Retired products are hidden from every read except List.
type Catalog interface {
	// ListActive returns all active products in store order.
	// Returns an empty slice if no products exist.
	ListActive(ctx context.Context) ([]Product, error)

	// List returns every stored product, retired ones included.
	List(ctx context.Context) ([]Product, error)

	// GetActive retrieves a single active product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID or it is retired.
	GetActive(ctx context.Context, id string) (*Product, error)

	// Add creates a new active product.
	// Returns ErrValidation for an empty name or a negative price.
	Add(ctx context.Context, name string, price decimal.Decimal, sku string) (*Product, error)

	// Update changes name, price and SKU of a product, active or retired, keeping its state.
	// Returns ErrValidation for bad input and ErrProductNotFound if the ID is unknown.
	Update(ctx context.Context, id, name string, price decimal.Decimal, sku string) (*Product, error)

	// Remove retires an active product.
	// Returns ErrProductNotFound if no active product exists with the given ID.
	Remove(ctx context.Context, id string) error
}

// Service implements Catalog on top of a docstore.Store.
type Service struct {
	store  docstore.Store
	newID  func(prefix string) string
	logger *slog.Logger
}

// NewService creates a new instance of Catalog with the provided store.
func NewService(store docstore.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		newID:  idgen.New,
		logger: logger.With("component", "catalog"),
	}
}

func (s *Service) ListActive(ctx context.Context) ([]Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Product, 0, len(products))
	for _, p := range products {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := docstore.ReadAll[Product](ctx, s.store, Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func (s *Service) GetActive(ctx context.Context, id string) (*Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			if !p.IsActive() {
				break
			}
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", poserrors.ErrProductNotFound, id)
}

func (s *Service) Add(ctx context.Context, name string, price decimal.Decimal, sku string) (*Product, error) {
	name, sku, err := validate(name, price, sku)
	if err != nil {
		return nil, err
	}

	product := Product{
		ID:    s.newID(idgen.ProductPrefix),
		Name:  name,
		Price: price,
		SKU:   sku,
		State: StateActive,
	}
	err = docstore.Mutate(ctx, s.store, Collection, func(products []Product) ([]Product, error) {
		return append(products, product), nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add product", "name", name, "error", err)
		return nil, fmt.Errorf("failed to add product: %w", err)
	}
	s.logger.InfoContext(ctx, "Product added", "ID", product.ID, "name", product.Name)
	return &product, nil
}

func (s *Service) Update(ctx context.Context, id, name string, price decimal.Decimal, sku string) (*Product, error) {
	name, sku, err := validate(name, price, sku)
	if err != nil {
		return nil, err
	}

	var updated Product
	err = docstore.Mutate(ctx, s.store, Collection, func(products []Product) ([]Product, error) {
		for i := range products {
			if products[i].ID == id {
				products[i].Name = name
				products[i].Price = price
				products[i].SKU = sku
				updated = products[i]
				return products, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", poserrors.ErrProductNotFound, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product updated", "ID", id)
	return &updated, nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	err := docstore.Mutate(ctx, s.store, Collection, func(products []Product) ([]Product, error) {
		for i := range products {
			if products[i].ID == id && products[i].IsActive() {
				products[i].State = StateRetired
				return products, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", poserrors.ErrProductNotFound, id)
	})
	if err != nil {
		return fmt.Errorf("failed to remove product with ID %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product retired", "ID", id)
	return nil
}

// validate trims name and SKU and checks them with the price before any storage access.
func validate(name string, price decimal.Decimal, sku string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: product name cannot be empty", poserrors.ErrValidation)
	}
	if price.IsNegative() {
		return "", "", fmt.Errorf("%w: product price cannot be negative", poserrors.ErrValidation)
	}
	return name, strings.TrimSpace(sku), nil
}
