package commands

import (
	"errors"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/core/domain/model/order"
	"marketorder/internal/pkg/guard"
)

var (
	ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
		"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
	)
)

// ChangeOrderStatusCommand represents a buyer- or seller-initiated request to
// move an order to a new status. The acting role is never taken from the
// request: the handler derives it by comparing the authenticated user id
// against the order's stored buyer and seller references.
//
// Example:
//
//	cmd, err := NewChangeOrderStatusCommand(orderID, order.Delivered, userID, "", "")
//	if err != nil {
//	    return err
//	}
//	updated, err := handler.Handle(ctx, cmd)
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	targetStatus order.Status
	userID       kernel.UUID
	notes        string
	cancelReason string

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a status-change command.
// Validates the identifiers and that the target is a member of the status set;
// whether the edge exists and the guards hold is decided by the aggregate.
func NewChangeOrderStatusCommand(
	orderID kernel.UUID,
	targetStatus order.Status,
	userID kernel.UUID,
	notes string,
	cancelReason string,
) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{
		notes:        notes,
		cancelReason: cancelReason,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTargetStatus(targetStatus),
		cmd.setUserID(userID),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrChangeOrderStatusCommandIsNotConstructed if validation fails.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TargetStatus returns the requested status.
func (c ChangeOrderStatusCommand) TargetStatus() order.Status {
	return c.targetStatus
}

// UserID returns the authenticated user requesting the transition.
func (c ChangeOrderStatusCommand) UserID() kernel.UUID {
	return c.userID
}

// Notes returns the optional notes attached to the transition.
func (c ChangeOrderStatusCommand) Notes() string {
	return c.notes
}

// CancelReason returns the cancellation reason, required when the target is
// cancelled.
func (c ChangeOrderStatusCommand) CancelReason() string {
	return c.cancelReason
}

func (c *ChangeOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStatusCommand) setTargetStatus(targetStatus order.Status) error {
	if err := targetStatus.Validate(); err != nil {
		return err
	}
	c.targetStatus = targetStatus
	return nil
}

func (c *ChangeOrderStatusCommand) setUserID(userID kernel.UUID) error {
	if err := userID.Validate(); err != nil {
		return err
	}
	c.userID = userID
	return nil
}
