package repository

import (
	"context"

	"github.com/modacart/backend/internal/domain"
)

// CartLineRepository defines persistence for active cart lines. Lines are
// unique per (customer, product, size); Insert surfaces a duplicate as an
// already-exists error.
type CartLineRepository interface {
	// FindLine retrieves the line for a (customer, product, size) tuple.
	FindLine(ctx context.Context, customer, product, size string) (*domain.CartLine, error)

	// FindByID retrieves a line by id scoped to its owning customer.
	FindByID(ctx context.Context, customer, id string) (*domain.CartLine, error)

	// ListByCustomer returns all of one customer's lines, oldest first.
	ListByCustomer(ctx context.Context, customer string) ([]domain.CartLine, error)

	// ListAll returns every cart line across all customers.
	ListAll(ctx context.Context) ([]domain.CartLine, error)

	// Insert creates a new line.
	Insert(ctx context.Context, line *domain.CartLine) error

	// UpdateQuantity replaces a line's quantity and returns the updated line.
	UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error)

	// Delete removes a line permanently.
	Delete(ctx context.Context, id string) error

	// DeleteByCustomer removes all of one customer's lines and reports how
	// many were deleted.
	DeleteByCustomer(ctx context.Context, customer string) (int64, error)
}

// RemovedLineRepository defines the append-only removal ledger. Records are
// never updated or deleted.
type RemovedLineRepository interface {
	// Insert appends one ledger record.
	Insert(ctx context.Context, rec *domain.RemovedCartLine) error

	// InsertMany appends a batch of ledger records.
	InsertMany(ctx context.Context, recs []domain.RemovedCartLine) error

	// ListAll returns every ledger record, most recently removed first.
	ListAll(ctx context.Context) ([]domain.RemovedCartLine, error)
}

// ProductRepository defines read access to the product catalog.
type ProductRepository interface {
	// FindByID retrieves an active product.
	FindByID(ctx context.Context, id string) (*domain.Product, error)

	// FindByIDs retrieves active products keyed by id; missing ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
}

// SizeRepository defines read access to the size catalog.
type SizeRepository interface {
	// FindByIDs retrieves active sizes keyed by id; missing ids are simply
	// absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Size, error)
}

// UserRepository defines read access to user accounts.
type UserRepository interface {
	// FindByID retrieves an active user.
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindByIDs retrieves active users keyed by id; missing ids are simply
	// absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}
