package commands

import (
	"context"
	"log/slog"

	"marketorder/internal/core/domain/model/order"
	"marketorder/internal/core/ports"
)

// ConfirmPaymentCommandHandler applies the gateway's payment confirmation to an
// order. The hold is verified against the gateway before the paid transition is
// applied, so a spoofed or stale callback cannot mark an order paid.
type ConfirmPaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
	notifier   ports.NotificationPublisher
	logger     *slog.Logger
}

// NewConfirmPaymentCommandHandler creates a handler for payment confirmations.
func NewConfirmPaymentCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
	notifier ports.NotificationPublisher,
	logger *slog.Logger,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		notifier:   notifier,
		logger:     logger.With("component", "confirm_payment"),
	}
}

// Handle verifies the hold with the gateway and moves the order to paid.
// The order is loaded before the gateway round-trip so a callback for an
// unknown order id surfaces as not-found without costing a gateway call.
// Re-delivered callbacks for an already paid order are idempotent no-ops.
func (h *ConfirmPaymentCommandHandler) Handle(
	ctx context.Context,
	cmd ConfirmPaymentCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = h.gateway.ConfirmHold(ctx, cmd.OrderID(), cmd.HoldID()); err != nil {
		return nil, order.NewPaymentPreconditionFailedError(order.Paid, err.Error())
	}

	priorStatus := aggregate.Status()
	changed, err := aggregate.MarkPaid(cmd.HoldID())
	if err != nil {
		return nil, err
	}

	if !changed {
		return aggregate, nil
	}

	if err = repo.Update(ctx, aggregate, priorStatus); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	log := aggregate.TransitionLog()
	if publishErr := h.notifier.PublishStatusChanged(ctx, aggregate, log[len(log)-1]); publishErr != nil {
		h.logger.WarnContext(ctx, "failed to publish payment confirmation",
			"order_id", aggregate.ID().String(), "error", publishErr)
	}

	return aggregate, nil
}
