package commands

import (
	"context"
	"log/slog"

	"marketorder/internal/core/domain/model/order"
	"marketorder/internal/core/ports"
)

// ChangeOrderStatusCommandHandler is the single entry point for buyer/seller
// status transitions. It enforces the transition table, the actor gating, and
// the apply-or-rollback contract:
//
//	validate -> persist new status and log -> invoke payment side effect -> commit
//
// The conditional update keyed on the prior status arbitrates concurrent
// requests: the loser observes a conflict and nothing it did becomes visible.
// A payment side-effect failure rolls the transaction back, so a failed capture
// or void leaves the order's status and transition log untouched.
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
	notifier   ports.NotificationPublisher
	logger     *slog.Logger
}

// NewChangeOrderStatusCommandHandler creates the transition handler.
// The notifier is invoked after commit and is best-effort.
func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
	notifier ports.NotificationPublisher,
	logger *slog.Logger,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		notifier:   notifier,
		logger:     logger.With("component", "change_order_status"),
	}
}

// Handle processes a status-change request and returns the updated order.
//
// Requesting the status the order already has is an idempotent no-op returning
// the unchanged order. Errors follow the transition taxonomy: InvalidTransition,
// Forbidden, RevisionLimitExceeded, PaymentPreconditionFailed from the domain,
// object-not-found for unknown ids, and conflict when a concurrent transition
// won the race.
func (h *ChangeOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeOrderStatusCommand,
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

	actor := aggregate.ActorFor(cmd.UserID())
	if actor == order.ActorUnknown {
		return nil, order.NewForbiddenError(actor, aggregate.Status(), cmd.TargetStatus())
	}

	priorStatus := aggregate.Status()
	changed, err := aggregate.Transition(cmd.TargetStatus(), actor, order.TransitionOptions{
		Notes:        cmd.Notes(),
		CancelReason: cmd.CancelReason(),
	})
	if err != nil {
		return nil, err
	}

	// Idempotent retry: nothing to persist, nothing to log.
	if !changed {
		return aggregate, nil
	}

	if err = repo.Update(ctx, aggregate, priorStatus); err != nil {
		return nil, err
	}

	if err = h.applyPaymentSideEffect(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publish(ctx, aggregate)
	return aggregate, nil
}

// applyPaymentSideEffect invokes the gateway call tied to the edge just applied,
// before commit so a gateway failure rolls the transition back.
func (h *ChangeOrderStatusCommandHandler) applyPaymentSideEffect(ctx context.Context, aggregate *order.Order) error {
	switch aggregate.Status() {
	case order.Completed:
		return h.gateway.CaptureHold(ctx, aggregate.ID())
	case order.Cancelled:
		return h.gateway.VoidHold(ctx, aggregate.ID())
	default:
		return nil
	}
}

func (h *ChangeOrderStatusCommandHandler) publish(ctx context.Context, aggregate *order.Order) {
	log := aggregate.TransitionLog()
	if len(log) == 0 {
		return
	}

	if err := h.notifier.PublishStatusChanged(ctx, aggregate, log[len(log)-1]); err != nil {
		h.logger.WarnContext(ctx, "failed to publish status change notification",
			"order_id", aggregate.ID().String(), "error", err)
	}
}
