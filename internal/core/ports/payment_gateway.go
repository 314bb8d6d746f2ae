package ports

import (
	"context"

	"marketorder/internal/core/domain/model/kernel"
)

// PaymentGateway is the payment-authorization collaborator the lifecycle core
// consumes but does not implement. It manages the hold on buyer funds:
// authorization at order creation, confirmation before the paid transition,
// capture on completion, and void on cancellation.
//
// Implementations must apply a bounded timeout to every call; a timeout is
// surfaced as an error and treated as a transition failure by the caller,
// never left pending. Failures are never swallowed.
type PaymentGateway interface {
	// CreateHold places an authorization hold for the order amount and
	// returns the gateway's hold identifier.
	CreateHold(ctx context.Context, orderID kernel.UUID, amount kernel.Money) (string, error)

	// ConfirmHold verifies that the given hold is confirmed for the order.
	ConfirmHold(ctx context.Context, orderID kernel.UUID, holdID string) error

	// CaptureHold captures the order's hold, releasing funds to the seller.
	CaptureHold(ctx context.Context, orderID kernel.UUID) error

	// VoidHold voids the order's hold, returning funds to the buyer.
	VoidHold(ctx context.Context, orderID kernel.UUID) error
}
