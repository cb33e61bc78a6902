package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/model"
)

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = errors.New("resource not found")

// DefaultEventBatchSize is the number of pending events listed when no positive limit is given.
const DefaultEventBatchSize = 100

// ProductRepository defines the storage operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindByIDForUpdate loads a product and locks its row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ProductQuery) (*ProductPage, error)
}

// EventRepository defines the storage operations for outbox events.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	ListPending(ctx context.Context, limit int) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
}

// TokenRepository defines the storage operations for API tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *model.APIToken) error
	FindByHash(ctx context.Context, hash string) (*model.APIToken, error)
	// MarkUsed records the current time as the last use of the token.
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Transactor runs fn with repositories bound to a single database transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(products ProductRepository, events EventRepository) error) error
}

// ConstraintError represents a database constraint violation.
type ConstraintError struct {
	Constraint string
	Detail     string
}

func (c *ConstraintError) Error() string {
	return "constraint violated: " + c.Constraint + " " + c.Detail
}
