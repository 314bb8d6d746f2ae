package commands

import (
	"errors"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/pkg/errs"
	"marketorder/internal/pkg/guard"
)

var (
	ErrConfirmPaymentCommandIsNotConstructed = errors.New(
		"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
	)
)

// ConfirmPaymentCommand represents the payment gateway's confirmation callback
// for an order's hold, driving the pending_payment -> paid transition.
type ConfirmPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	holdID  string

	guard guard.ConstructorGuard
}

// NewConfirmPaymentCommand creates a payment confirmation command.
// The hold id must be the one issued at order creation.
func NewConfirmPaymentCommand(orderID kernel.UUID, holdID string) (ConfirmPaymentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ConfirmPaymentCommand{}, err
	}
	if holdID == "" {
		return ConfirmPaymentCommand{}, errs.NewValueIsRequiredError("holdID")
	}

	return ConfirmPaymentCommand{
		orderID: orderID,
		holdID:  holdID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrConfirmPaymentCommandIsNotConstructed if validation fails.
func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

// OrderID returns the order whose payment was confirmed.
func (c ConfirmPaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// HoldID returns the gateway's hold identifier.
func (c ConfirmPaymentCommand) HoldID() string {
	return c.holdID
}
