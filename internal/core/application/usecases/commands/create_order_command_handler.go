package commands

import (
	"context"
	"log/slog"

	"marketorder/internal/core/domain/model/order"
	"marketorder/internal/core/ports"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// Creates the order in pending_payment status and requests an authorization
// hold for the full amount from the payment gateway, storing the returned
// hold id as the order's payment intent.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, gateway, logger)
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// created awaits the gateway's payment confirmation callback
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
	logger     *slog.Logger
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// Requires an OrderUoWFactory for transactional persistence and the payment
// gateway for hold creation.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		logger:     logger.With("component", "create_order"),
	}
}

// Handle processes the order creation command.
// The hold is requested before the order is persisted so a persisted order
// always carries its payment intent id; a gateway failure aborts creation.
// If creation aborts after the hold was placed, the hold is voided so the
// buyer's funds are not left authorized for an order that never existed.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	aggregate, err := order.NewOrder(
		cmd.OrderID(), cmd.ListingID(), cmd.BuyerID(), cmd.SellerID(),
		cmd.OfferID(), cmd.Price(), cmd.ShippingAddress(),
		cmd.ExpectedDeliveryDays(), cmd.MaxRevisions(),
	)
	if err != nil {
		return nil, err
	}

	holdID, err := h.gateway.CreateHold(ctx, aggregate.ID(), aggregate.Price())
	if err != nil {
		return nil, err
	}

	if err = aggregate.AttachPaymentIntent(holdID); err != nil {
		h.voidHold(ctx, aggregate)
		return nil, err
	}

	if err = h.persist(ctx, aggregate); err != nil {
		h.voidHold(ctx, aggregate)
		return nil, err
	}

	return aggregate, nil
}

func (h *CreateOrderCommandHandler) persist(ctx context.Context, aggregate *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// voidHold releases a hold placed for an order whose creation aborted.
// Best-effort: the failure that aborted creation is the one surfaced, a void
// failure is only logged.
func (h *CreateOrderCommandHandler) voidHold(ctx context.Context, aggregate *order.Order) {
	if err := h.gateway.VoidHold(ctx, aggregate.ID()); err != nil {
		h.logger.WarnContext(ctx, "failed to void hold after aborted order creation",
			"order_id", aggregate.ID().String(), "error", err)
	}
}
