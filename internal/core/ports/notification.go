package ports

import (
	"context"

	"marketorder/internal/core/domain/model/order"
)

// NotificationPublisher is the notification/audit sink informed after a
// transition commits. Publishing is best-effort: implementations may log or
// enqueue, and errors are recorded by the caller but never fail a transition
// that has already committed.
type NotificationPublisher interface {
	// PublishStatusChanged announces a committed status transition.
	PublishStatusChanged(ctx context.Context, aggregate *order.Order, entry order.TransitionEntry) error
}
