package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/oms/backend/internal/domain/shared"
)

// Repository defines the persistence operations for orders
type Repository interface {
	// Save persists the order (insert or update)
	Save(ctx context.Context, o *Order) error

	// FindByID retrieves an order by its surrogate ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNo retrieves an order by its external reference
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// FindByOrderNoForUpdate retrieves an order by its external reference
	// holding a row-level exclusive lock. Only meaningful inside a
	// transaction; concurrent transitions for the same order serialize
	// behind the lock holder.
	FindByOrderNoForUpdate(ctx context.Context, orderNo string) (*Order, error)

	// FindAll retrieves orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByOrderNo checks external-reference uniqueness. excludeID is
	// ignored when uuid.Nil; set it on edits so the order does not collide
	// with itself.
	ExistsByOrderNo(ctx context.Context, orderNo string, excludeID uuid.UUID) (bool, error)

	// Delete removes an order unconditionally, regardless of status
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus returns order counts grouped by status
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
}

// ReferenceChecker validates that foreign identities referenced by an order
// exist. Clients, contact persons and users are owned by collaborators
// outside the lifecycle; only their existence is checked here.
type ReferenceChecker interface {
	ClientExists(ctx context.Context, id uuid.UUID) (bool, error)
	ContactPersonExists(ctx context.Context, id uuid.UUID) (bool, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
}
