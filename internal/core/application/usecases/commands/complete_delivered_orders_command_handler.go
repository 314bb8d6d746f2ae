package commands

import (
	"context"
	"log/slog"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/core/domain/model/order"
	"marketorder/internal/core/ports"
)

// CompleteDeliveredOrdersCommandHandler completes stale deliveries on behalf of
// the buyer. Each order is processed in its own unit of work so one failure
// does not block the batch; an order a concurrent request just transitioned is
// skipped and picked up (or not) on the next run.
type CompleteDeliveredOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
	notifier   ports.NotificationPublisher
	logger     *slog.Logger
}

// NewCompleteDeliveredOrdersCommandHandler creates the auto-completion handler.
func NewCompleteDeliveredOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
	notifier ports.NotificationPublisher,
	logger *slog.Logger,
) CompleteDeliveredOrdersCommandHandler {
	return CompleteDeliveredOrdersCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		notifier:   notifier,
		logger:     logger.With("component", "complete_delivered_orders"),
	}
}

// Handle completes every order delivered before the command's cutoff and
// returns the number of orders completed.
func (h *CompleteDeliveredOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd CompleteDeliveredOrdersCommand,
) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	listUow := h.uowFactory.Create()
	if err := listUow.Begin(ctx); err != nil {
		return 0, err
	}

	stale, err := listUow.OrderRepository().GetAllDeliveredBefore(ctx, cmd.Cutoff())
	if rollbackErr := listUow.Rollback(ctx); rollbackErr != nil {
		h.logger.WarnContext(ctx, "failed to release read transaction", "error", rollbackErr)
	}
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, candidate := range stale {
		if err = h.completeOne(ctx, candidate.ID()); err != nil {
			h.logger.WarnContext(ctx, "failed to auto-complete order",
				"order_id", candidate.ID().String(), "error", err)
			continue
		}
		completed++
	}

	return completed, nil
}

func (h *CompleteDeliveredOrdersCommandHandler) completeOne(ctx context.Context, orderID kernel.UUID) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	priorStatus := aggregate.Status()
	changed, err := aggregate.Complete(order.ActorSystem)
	if err != nil {
		return err
	}

	if !changed {
		return nil
	}

	if err = repo.Update(ctx, aggregate, priorStatus); err != nil {
		return err
	}

	if err = h.gateway.CaptureHold(ctx, aggregate.ID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	log := aggregate.TransitionLog()
	if publishErr := h.notifier.PublishStatusChanged(ctx, aggregate, log[len(log)-1]); publishErr != nil {
		h.logger.WarnContext(ctx, "failed to publish auto-completion",
			"order_id", aggregate.ID().String(), "error", publishErr)
	}

	return nil
}
