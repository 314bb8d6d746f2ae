// Package notification provides the notification sink informed after a status
// transition commits. The current implementation writes structured log records;
// a message broker can replace it behind the same port.
package notification

import (
	"context"
	"log/slog"

	"marketorder/internal/core/domain/model/order"
)

// SlogPublisher implements ports.NotificationPublisher on top of slog.
// Publishing is best-effort and never fails a committed transition.
type SlogPublisher struct {
	logger *slog.Logger
}

// NewSlogPublisher creates a publisher writing to the given logger.
func NewSlogPublisher(logger *slog.Logger) *SlogPublisher {
	return &SlogPublisher{
		logger: logger.With("component", "notifications"),
	}
}

// PublishStatusChanged announces a committed status transition.
func (p *SlogPublisher) PublishStatusChanged(
	ctx context.Context,
	aggregate *order.Order,
	entry order.TransitionEntry,
) error {
	p.logger.InfoContext(ctx, "order status changed",
		"order_id", aggregate.ID().String(),
		"buyer_id", aggregate.BuyerID().String(),
		"seller_id", aggregate.SellerID().String(),
		"from", entry.From.String(),
		"to", entry.To.String(),
		"actor", entry.Actor.String(),
		"at", entry.At,
	)
	return nil
}
