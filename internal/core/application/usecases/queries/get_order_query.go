// Package queries contains read-only operations against the order store.
// Implements the query side of the CQRS architecture: handlers read the
// database directly and shape responses for the API, bypassing the aggregate's
// write path.
package queries

import (
	"errors"
	"time"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves the full order document for one of its participants.
// The requesting user determines the allowedTransitions field of the response:
// it lists only the moves that user's role may request next.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID, userID)
//	if err != nil {
//	    return err
//	}
//	doc, err := handler.Handle(ctx, query)
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	userID  kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order document.
func NewGetOrderQuery(orderID, userID kernel.UUID) (GetOrderQuery, error) {
	if err := errors.Join(orderID.Validate(), userID.Validate()); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		userID:  userID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderQueryIsNotConstructed if validation fails.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the order to read.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// UserID returns the authenticated user requesting the document.
func (q GetOrderQuery) UserID() kernel.UUID {
	return q.userID
}

// TransitionLogEntryResponse is one transition log record in wire format.
type TransitionLogEntryResponse struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Actor string    `json:"actor"`
	At    time.Time `json:"at"`
	Notes string    `json:"notes,omitempty"`
}

// OrderResponse is the order document returned by read operations.
// Monetary amounts are decimal strings; the platform fee and seller payout are
// computed from the stored price and fee percentage, never read from storage.
type OrderResponse struct {
	ID        string  `json:"id"`
	ListingID string  `json:"listingId"`
	BuyerID   string  `json:"buyerId"`
	SellerID  string  `json:"sellerId"`
	OfferID   *string `json:"offerId,omitempty"`

	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	PlatformFee  string `json:"platformFee"`
	SellerPayout string `json:"sellerPayout"`

	Status             string   `json:"status"`
	AllowedTransitions []string `json:"allowedTransitions"`

	PaymentIntentID string     `json:"paymentIntentId,omitempty"`
	PaymentStatus   string     `json:"paymentStatus"`
	PaymentReleased bool       `json:"paymentReleased"`
	ReleasedAt      *time.Time `json:"releasedAt,omitempty"`

	ShippingAddress      string     `json:"shippingAddress,omitempty"`
	ExpectedDeliveryDays int        `json:"expectedDeliveryDays"`
	DeliveredAt          *time.Time `json:"deliveredAt,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	CancelReason         string     `json:"cancelReason,omitempty"`

	RevisionCount int      `json:"revisionCount"`
	MaxRevisions  int      `json:"maxRevisions"`
	RevisionNotes []string `json:"revisionNotes,omitempty"`

	TransitionLog []TransitionLogEntryResponse `json:"transitionLog"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
