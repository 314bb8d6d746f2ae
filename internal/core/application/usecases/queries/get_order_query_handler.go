package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/core/domain/model/order"
	"marketorder/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler retrieves the full order document from the database.
// Reads the orders table directly, bypassing the aggregate write path.
//
// Example:
//
//	handler := NewGetOrderQueryHandler(db)
//	query, _ := NewGetOrderQuery(orderID, userID)
//
//	doc, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get order: %v", err)
//	    return err
//	}
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order reads.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query and returns the order document.
// Only the order's buyer or seller may read it; the allowedTransitions field
// reflects the requester's role. Unknown ids return an object-not-found error.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var row orderRow
	result := h.db.WithContext(ctx).Raw(`
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
		WHERE id = ?
	`, query.OrderID().Bytes()).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	actor, err := row.actorFor(query.UserID())
	if err != nil {
		return nil, err
	}

	return row.toResponse(actor)
}

// orderRow mirrors the orders table for the read side. The jsonb columns are
// scanned raw and decoded during response mapping.
type orderRow struct {
	ID        uuid.UUID
	ListingID uuid.UUID
	BuyerID   uuid.UUID
	SellerID  uuid.UUID
	OfferID   *uuid.UUID

	Amount        decimal.Decimal
	Currency      string
	FeePercentage decimal.Decimal

	Status int

	PaymentIntentID string
	PaymentStatus   int
	PaymentReleased bool
	ReleasedAt      *time.Time

	ShippingAddress      string
	ExpectedDeliveryDays int
	DeliveredAt          *time.Time
	CompletedAt          *time.Time
	CancelReason         string

	RevisionCount int
	MaxRevisions  int
	RevisionNotes []byte

	TransitionLog []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// actorFor resolves the requesting user's role on this order.
// Users who are neither buyer nor seller may not read the document.
func (row orderRow) actorFor(userID kernel.UUID) (order.Actor, error) {
	switch userID.Bytes() {
	case row.BuyerID:
		return order.ActorBuyer, nil
	case row.SellerID:
		return order.ActorSeller, nil
	default:
		return order.ActorUnknown, fmt.Errorf(
			"user %s is not a participant of order %s: %w",
			userID, row.ID, order.ErrForbidden)
	}
}

// toResponse shapes the row into the wire document, recomputing the platform
// fee and seller payout from the price and listing allowed transitions for the
// requesting role.
func (row orderRow) toResponse(actor order.Actor) (*OrderResponse, error) {
	price, err := kernel.NewMoney(row.Amount, row.Currency)
	if err != nil {
		return nil, err
	}

	fee := price.MulRound(row.FeePercentage)
	payout, err := price.Sub(fee)
	if err != nil {
		return nil, err
	}

	var offerID *string
	if row.OfferID != nil {
		s := row.OfferID.String()
		offerID = &s
	}

	var revisionNotes []string
	if len(row.RevisionNotes) > 0 {
		if err = json.Unmarshal(row.RevisionNotes, &revisionNotes); err != nil {
			return nil, err
		}
	}

	var logEntries []order.TransitionEntry
	if len(row.TransitionLog) > 0 {
		if err = json.Unmarshal(row.TransitionLog, &logEntries); err != nil {
			return nil, err
		}
	}

	transitionLog := make([]TransitionLogEntryResponse, 0, len(logEntries))
	for _, entry := range logEntries {
		transitionLog = append(transitionLog, TransitionLogEntryResponse{
			From:  entry.From.String(),
			To:    entry.To.String(),
			Actor: entry.Actor.String(),
			At:    entry.At,
			Notes: entry.Notes,
		})
	}

	status := order.Status(row.Status)
	allowed := status.AllowedTransitionsFor(actor)
	allowedStrings := make([]string, 0, len(allowed))
	for _, target := range allowed {
		allowedStrings = append(allowedStrings, target.String())
	}

	return &OrderResponse{
		ID:        row.ID.String(),
		ListingID: row.ListingID.String(),
		BuyerID:   row.BuyerID.String(),
		SellerID:  row.SellerID.String(),
		OfferID:   offerID,

		Amount:       row.Amount.String(),
		Currency:     row.Currency,
		PlatformFee:  fee.Amount().String(),
		SellerPayout: payout.Amount().String(),

		Status:             status.String(),
		AllowedTransitions: allowedStrings,

		PaymentIntentID: row.PaymentIntentID,
		PaymentStatus:   order.PaymentStatus(row.PaymentStatus).String(),
		PaymentReleased: row.PaymentReleased,
		ReleasedAt:      row.ReleasedAt,

		ShippingAddress:      row.ShippingAddress,
		ExpectedDeliveryDays: row.ExpectedDeliveryDays,
		DeliveredAt:          row.DeliveredAt,
		CompletedAt:          row.CompletedAt,
		CancelReason:         row.CancelReason,

		RevisionCount: row.RevisionCount,
		MaxRevisions:  row.MaxRevisions,
		RevisionNotes: revisionNotes,

		TransitionLog: transitionLog,

		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
