// Package ports defines the contracts between the order lifecycle core and
// infrastructure: persistence, the payment gateway, and the notification sink.
// These interfaces enable dependency inversion and testability.
package ports

import (
	"context"
	"time"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using a conditional
	// write keyed on the status the aggregate held when it was loaded.
	//
	// expectedStatus is the status the caller observed before mutating the
	// aggregate. If the stored row no longer carries that status, the update
	// affects no rows and Update returns a conflict error (errs.ErrConflict),
	// implementing the single-writer-per-order rule: of two concurrent
	// transitions from the same prior state, exactly one wins.
	Update(ctx context.Context, aggregate *order.Order, expectedStatus order.Status) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns an object-not-found error for unknown ids.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllDeliveredBefore retrieves orders in delivered status whose delivery
	// timestamp is older than the cutoff. Used by the auto-complete job to find
	// deliveries the buyer never accepted or rejected.
	GetAllDeliveredBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error)

	// GetAllActiveForUser retrieves all non-terminal orders where the user is
	// buyer or seller.
	GetAllActiveForUser(ctx context.Context, userID kernel.UUID) ([]*order.Order, error)
}
