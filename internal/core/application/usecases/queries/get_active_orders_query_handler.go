package queries

import (
	"context"

	"marketorder/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves a user's non-terminal orders from the
// database, giving buyers and sellers visibility of their in-flight deals.
//
// Example:
//
//	handler := NewGetActiveOrdersQueryHandler(db)
//	query, _ := NewGetActiveOrdersQuery(userID)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d active orders\n", len(orders))
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for active-order listings.
// Requires a GORM database connection for query execution.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query and returns the user's active order documents,
// oldest first. Each document's allowedTransitions reflects the user's role on
// that particular order.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []orderRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			id, listing_id, buyer_id, seller_id, offer_id,
			amount, currency, fee_percentage,
			status,
			payment_intent_id, payment_status, payment_released, released_at,
			shipping_address, expected_delivery_days, delivered_at, completed_at, cancel_reason,
			revision_count, max_revisions, revision_notes,
			transition_log,
			created_at, updated_at
		FROM orders
		WHERE (buyer_id = ? OR seller_id = ?) AND status NOT IN (?, ?)
		ORDER BY created_at
	`, query.UserID().Bytes(), query.UserID().Bytes(),
		int(order.Completed), int(order.Cancelled)).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	orders := make([]OrderResponse, 0, len(rows))
	for _, row := range rows {
		actor, actorErr := row.actorFor(query.UserID())
		if actorErr != nil {
			return nil, actorErr
		}

		resp, respErr := row.toResponse(actor)
		if respErr != nil {
			return nil, respErr
		}
		orders = append(orders, *resp)
	}

	return orders, nil
}
