package commands

import (
	"errors"
	"time"

	"marketorder/internal/pkg/errs"
	"marketorder/internal/pkg/guard"
)

var (
	ErrCompleteDeliveredOrdersCommandIsNotConstructed = errors.New(
		"CompleteDeliveredOrdersCommand must be created via NewCompleteDeliveredOrdersCommand constructor",
	)
)

// CompleteDeliveredOrdersCommand requests auto-completion of delivered orders
// the buyer never accepted or sent back within the acceptance window.
type CompleteDeliveredOrdersCommand struct { //nolint:recvcheck //using for validation
	cutoff time.Time

	guard guard.ConstructorGuard
}

// NewCompleteDeliveredOrdersCommand creates an auto-completion command.
// Orders delivered before the cutoff are completed on the buyer's behalf.
func NewCompleteDeliveredOrdersCommand(cutoff time.Time) (CompleteDeliveredOrdersCommand, error) {
	if cutoff.IsZero() {
		return CompleteDeliveredOrdersCommand{}, errs.NewValueIsRequiredError("cutoff")
	}

	return CompleteDeliveredOrdersCommand{
		cutoff: cutoff,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCompleteDeliveredOrdersCommandIsNotConstructed if validation fails.
func (c CompleteDeliveredOrdersCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveredOrdersCommandIsNotConstructed)
}

// Cutoff returns the delivery-timestamp threshold.
func (c CompleteDeliveredOrdersCommand) Cutoff() time.Time {
	return c.cutoff
}
