package order

import (
	"errors"
	"fmt"
	"time"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory functions.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// DefaultMaxRevisions bounds the delivered -> in_revision rework loop when the
// listing does not specify its own limit.
const DefaultMaxRevisions = 2

// platformFeePercentage is the fixed marketplace commission withheld from the
// seller payout.
var platformFeePercentage = decimal.NewFromFloat(0.15)

// TransitionEntry is one record of the append-only transition log: who moved the
// order along which edge, when, and with what notes.
type TransitionEntry struct {
	From  Status    `json:"from"`
	To    Status    `json:"to"`
	Actor Actor     `json:"actor"`
	At    time.Time `json:"at"`
	Notes string    `json:"notes,omitempty"`
}

// TransitionOptions carries the optional inputs of a transition request.
// CancelReason is mandatory when the target is cancelled; PaymentConfirmed and
// PaymentIntentID are supplied by the payment gateway callback on the paid edge.
type TransitionOptions struct {
	Notes            string
	CancelReason     string
	PaymentIntentID  string
	PaymentConfirmed bool
}

// Order represents a marketplace order in the system. It is the aggregate root
// that owns the canonical order state from creation through completion or
// cancellation.
//
// Order follows these invariants:
//   - Buyer, seller, and listing references are immutable after creation
//   - Status moves only along the transition table edges, gated by actor role
//   - paymentReleased is true only for completed orders
//   - The seller payout is recomputed from the price and fee, never stored
//   - Revision requests never exceed the maximum allowed revisions
//   - Can only be created through NewOrder or RestoreOrder
//
// The struct uses private fields to ensure encapsulation and maintains its
// invariants through validated methods. Orders are never deleted, only
// terminalized.
type Order struct {
	// identity and immutable references
	id        kernel.UUID
	listingID kernel.UUID
	buyerID   kernel.UUID
	sellerID  kernel.UUID
	offerID   *kernel.UUID

	// commercial fields
	price         kernel.Money
	feePercentage decimal.Decimal

	// status is the current state in the order lifecycle
	status Status

	// payment fields, mirroring the payment gateway
	paymentIntentID string
	paymentStatus   PaymentStatus
	paymentReleased bool
	releasedAt      *time.Time

	// fulfillment fields
	shippingAddress      string
	expectedDeliveryDays int
	deliveredAt          *time.Time
	completedAt          *time.Time
	cancelReason         string

	// revision tracking
	revisionCount     int
	maxRevisions      int
	revisionRequested bool
	revisionNotes     []string

	// transitionLog is append-only; entries are never rewritten
	transitionLog []TransitionEntry

	createdAt time.Time
	updatedAt time.Time

	// isConstructed ensures the order was created via a factory function
	isConstructed bool
}

// NewOrder creates a new Order in pending_payment status. This is called once an
// offer is accepted and the seller confirms fulfillment intent, before payment.
//
// Parameters:
//   - id, listingID, buyerID, sellerID: valid UUIDs; buyer and seller must differ
//   - offerID: the originating offer, nil for direct purchases
//   - price: the agreed amount
//   - shippingAddress: may be empty for digital listings
//   - expectedDeliveryDays: must be positive
//   - maxRevisions: 0 selects DefaultMaxRevisions, negative values are invalid
//
// Returns the created order, or a validation error if any parameter is invalid.
func NewOrder(
	id, listingID, buyerID, sellerID kernel.UUID,
	offerID *kernel.UUID,
	price kernel.Money,
	shippingAddress string,
	expectedDeliveryDays int,
	maxRevisions int,
) (*Order, error) {
	now := time.Now().UTC()
	o := &Order{
		status:          PendingPayment,
		paymentStatus:   PaymentPending,
		feePercentage:   platformFeePercentage,
		shippingAddress: shippingAddress,
		createdAt:       now,
		updatedAt:       now,
		isConstructed:   true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setParties(listingID, buyerID, sellerID, offerID),
		o.setPrice(price),
		o.setExpectedDeliveryDays(expectedDeliveryDays),
		o.setMaxRevisions(maxRevisions),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrderParams carries the full persisted state needed to reconstruct an
// Order aggregate from storage.
type RestoreOrderParams struct {
	ID        kernel.UUID
	ListingID kernel.UUID
	BuyerID   kernel.UUID
	SellerID  kernel.UUID
	OfferID   *kernel.UUID

	Price         kernel.Money
	FeePercentage decimal.Decimal

	Status Status

	PaymentIntentID string
	PaymentStatus   PaymentStatus
	PaymentReleased bool
	ReleasedAt      *time.Time

	ShippingAddress      string
	ExpectedDeliveryDays int
	DeliveredAt          *time.Time
	CompletedAt          *time.Time
	CancelReason         string

	RevisionCount     int
	MaxRevisions      int
	RevisionRequested bool
	RevisionNotes     []string

	TransitionLog []TransitionEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RestoreOrder reconstructs an Order from persisted state. Used by repositories
// when loading aggregates; validates identity, money, and status consistency.
func RestoreOrder(params RestoreOrderParams) (*Order, error) {
	if err := errors.Join(
		params.ID.Validate(),
		params.ListingID.Validate(),
		params.BuyerID.Validate(),
		params.SellerID.Validate(),
		params.Price.Validate(),
		params.Status.Validate(),
		params.PaymentStatus.Validate(),
	); err != nil {
		return nil, err
	}

	if params.OfferID != nil {
		if err := params.OfferID.Validate(); err != nil {
			return nil, err
		}
	}

	if params.PaymentReleased && params.Status != Completed {
		return nil, errs.NewValueIsInvalidErrorWithCause("paymentReleased",
			fmt.Errorf("payment cannot be released in status %s", params.Status))
	}

	return &Order{
		id:                   params.ID,
		listingID:            params.ListingID,
		buyerID:              params.BuyerID,
		sellerID:             params.SellerID,
		offerID:              params.OfferID,
		price:                params.Price,
		feePercentage:        params.FeePercentage,
		status:               params.Status,
		paymentIntentID:      params.PaymentIntentID,
		paymentStatus:        params.PaymentStatus,
		paymentReleased:      params.PaymentReleased,
		releasedAt:           params.ReleasedAt,
		shippingAddress:      params.ShippingAddress,
		expectedDeliveryDays: params.ExpectedDeliveryDays,
		deliveredAt:          params.DeliveredAt,
		completedAt:          params.CompletedAt,
		cancelReason:         params.CancelReason,
		revisionCount:        params.RevisionCount,
		maxRevisions:         params.MaxRevisions,
		revisionRequested:    params.RevisionRequested,
		revisionNotes:        params.RevisionNotes,
		transitionLog:        params.TransitionLog,
		createdAt:            params.CreatedAt,
		updatedAt:            params.UpdatedAt,
		isConstructed:        true,
	}, nil
}

// Validate ensures the Order instance was properly constructed through a factory
// function. Prevents bypassing validation by directly instantiating the struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// Transition validates and applies a status change requested by the given actor.
//
// The requested edge must exist in the transition table, the actor must be
// allowed on that edge, and edge-specific guards must hold:
//   - paid requires a confirmed payment-gateway callback with a matching hold id
//   - in_revision requires revision capacity below the maximum
//   - completed requires the payment hold to be in confirmed state
//   - cancelled requires a cancellation reason
//
// Requesting the current status is an idempotent no-op: Transition returns
// (false, nil) and leaves the order untouched, including its updatedAt and log.
//
// On success the order carries the new status, an updated timestamp, and a new
// transition-log entry, and Transition returns (true, nil). The caller is
// responsible for persisting the order and invoking the payment side effect
// within one atomic scope; a failed side effect must discard the mutated
// aggregate rather than persist it.
func (o *Order) Transition(target Status, actor Actor, opts TransitionOptions) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if err := target.Validate(); err != nil {
		return false, err
	}

	// Retried client requests resubmit the status they already observe.
	if target == o.status {
		return false, nil
	}

	if err := o.status.ValidateTransition(target, actor); err != nil {
		return false, err
	}

	if err := o.checkGuards(target, opts); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	entry := TransitionEntry{
		From:  o.status,
		To:    target,
		Actor: actor,
		At:    now,
		Notes: opts.Notes,
	}

	switch target {
	case Paid:
		o.paymentStatus = PaymentConfirmed
		if o.paymentIntentID == "" {
			o.paymentIntentID = opts.PaymentIntentID
		}
	case Delivered:
		o.deliveredAt = &now
		o.revisionRequested = false
	case InRevision:
		o.revisionCount++
		o.revisionRequested = true
		if opts.Notes != "" {
			o.revisionNotes = append(o.revisionNotes, opts.Notes)
		}
	case Completed:
		o.completedAt = &now
		o.paymentStatus = PaymentCaptured
		o.paymentReleased = true
		o.releasedAt = &now
	case Cancelled:
		o.cancelReason = opts.CancelReason
		o.paymentStatus = PaymentVoided
		if entry.Notes == "" {
			entry.Notes = opts.CancelReason
		}
	}

	o.status = target
	o.updatedAt = now
	o.transitionLog = append(o.transitionLog, entry)
	return true, nil
}

// checkGuards enforces the edge-specific preconditions beyond table membership.
func (o *Order) checkGuards(target Status, opts TransitionOptions) error {
	switch target {
	case Paid:
		if !opts.PaymentConfirmed {
			return NewPaymentPreconditionFailedError(Paid,
				"payment hold has not been confirmed by the gateway")
		}
		if o.paymentIntentID != "" && opts.PaymentIntentID != "" && o.paymentIntentID != opts.PaymentIntentID {
			return NewPaymentPreconditionFailedError(Paid,
				fmt.Sprintf("hold %s does not match the order's payment intent", opts.PaymentIntentID))
		}
	case InRevision:
		if o.revisionCount+1 > o.maxRevisions {
			return NewRevisionLimitExceededError(o.revisionCount+1, o.maxRevisions)
		}
	case Completed:
		if o.paymentStatus != PaymentConfirmed {
			return NewPaymentPreconditionFailedError(Completed,
				fmt.Sprintf("payment hold is %s, not confirmed for capture", o.paymentStatus))
		}
	case Cancelled:
		if opts.CancelReason == "" {
			return errs.NewValueIsRequiredError("cancelReason")
		}
	}
	return nil
}

// MarkPaid applies the payment gateway's confirmation callback, transitioning
// the order from pending_payment to paid.
func (o *Order) MarkPaid(paymentIntentID string) (bool, error) {
	return o.Transition(Paid, ActorPaymentGateway, TransitionOptions{
		PaymentIntentID:  paymentIntentID,
		PaymentConfirmed: true,
	})
}

// StartProcessing moves a paid order into processing.
func (o *Order) StartProcessing(actor Actor) (bool, error) {
	return o.Transition(Processing, actor, TransitionOptions{})
}

// StartWork moves a processing order into in_progress.
func (o *Order) StartWork(actor Actor) (bool, error) {
	return o.Transition(InProgress, actor, TransitionOptions{})
}

// Deliver submits the work for buyer review, recording the delivery timestamp.
// Also used for redelivery after a revision.
func (o *Order) Deliver(actor Actor) (bool, error) {
	return o.Transition(Delivered, actor, TransitionOptions{})
}

// Complete accepts the delivery, releasing the payment to the seller.
func (o *Order) Complete(actor Actor) (bool, error) {
	return o.Transition(Completed, actor, TransitionOptions{})
}

// RequestRevision rejects a delivery and asks the seller for rework.
// Fails once the revision limit is reached.
func (o *Order) RequestRevision(actor Actor, notes string) (bool, error) {
	return o.Transition(InRevision, actor, TransitionOptions{Notes: notes})
}

// Cancel abandons the order before fulfillment work has started.
// A cancellation reason is required.
func (o *Order) Cancel(actor Actor, reason string) (bool, error) {
	return o.Transition(Cancelled, actor, TransitionOptions{CancelReason: reason})
}

// AttachPaymentIntent records the hold id returned by the payment gateway when
// the hold is first created, before confirmation.
func (o *Order) AttachPaymentIntent(paymentIntentID string) error {
	if paymentIntentID == "" {
		return errs.NewValueIsRequiredError("paymentIntentID")
	}
	if o.paymentIntentID != "" {
		return errs.NewValueIsInvalidErrorWithCause("paymentIntentID",
			fmt.Errorf("order already carries payment intent %s", o.paymentIntentID))
	}
	o.paymentIntentID = paymentIntentID
	o.updatedAt = time.Now().UTC()
	return nil
}

// ActorFor derives the transition role of the given authenticated user by
// comparing it against the order's stored buyer and seller references.
// Returns ActorUnknown for users that are neither.
func (o *Order) ActorFor(userID kernel.UUID) Actor {
	switch {
	case userID.IsEqual(o.buyerID):
		return ActorBuyer
	case userID.IsEqual(o.sellerID):
		return ActorSeller
	default:
		return ActorUnknown
	}
}

// AllowedTransitions returns the target statuses reachable from the current
// status regardless of actor.
func (o *Order) AllowedTransitions() []Status {
	return o.status.AllowedTransitions()
}

// AllowedTransitionsFor returns the target statuses the given actor may request
// from the current status.
func (o *Order) AllowedTransitionsFor(actor Actor) []Status {
	return o.status.AllowedTransitionsFor(actor)
}

// PlatformFee returns the marketplace commission, the price multiplied by the
// fee percentage and rounded to currency precision.
func (o *Order) PlatformFee() kernel.Money {
	return o.price.MulRound(o.feePercentage)
}

// SellerPayout returns the amount owed to the seller: price minus platform fee.
// Always recomputed so it can never disagree with the stored amount.
func (o *Order) SellerPayout() kernel.Money {
	payout, err := o.price.Sub(o.PlatformFee())
	if err != nil {
		// The fee shares the price's currency, so subtraction cannot fail.
		return kernel.Money{}
	}
	return payout
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// ListingID returns the listing this order was placed against.
func (o *Order) ListingID() kernel.UUID {
	return o.listingID
}

// BuyerID returns the buyer's user id.
func (o *Order) BuyerID() kernel.UUID {
	return o.buyerID
}

// SellerID returns the seller's user id.
func (o *Order) SellerID() kernel.UUID {
	return o.sellerID
}

// OfferID returns the originating offer id, nil for direct purchases.
func (o *Order) OfferID() *kernel.UUID {
	return o.offerID
}

// Price returns the agreed amount.
func (o *Order) Price() kernel.Money {
	return o.price
}

// FeePercentage returns the platform fee percentage applied to this order.
func (o *Order) FeePercentage() decimal.Decimal {
	return o.feePercentage
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// PaymentIntentID returns the payment gateway's hold identifier.
func (o *Order) PaymentIntentID() string {
	return o.paymentIntentID
}

// PaymentStatus returns the state of the payment hold.
func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// PaymentReleased reports whether the hold was captured for the seller.
func (o *Order) PaymentReleased() bool {
	return o.paymentReleased
}

// ReleasedAt returns when the payment was released, nil if it was not.
func (o *Order) ReleasedAt() *time.Time {
	return o.releasedAt
}

// ShippingAddress returns the delivery address, empty for digital listings.
func (o *Order) ShippingAddress() string {
	return o.shippingAddress
}

// ExpectedDeliveryDays returns the agreed fulfillment window in days.
func (o *Order) ExpectedDeliveryDays() int {
	return o.expectedDeliveryDays
}

// DeliveredAt returns the delivery timestamp, nil before delivery.
func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

// CompletedAt returns the completion timestamp, nil before completion.
func (o *Order) CompletedAt() *time.Time {
	return o.completedAt
}

// CancelReason returns the recorded cancellation reason, empty if not cancelled.
func (o *Order) CancelReason() string {
	return o.cancelReason
}

// RevisionCount returns how many revisions the buyer has requested.
func (o *Order) RevisionCount() int {
	return o.revisionCount
}

// MaxRevisions returns the revision limit for this order.
func (o *Order) MaxRevisions() int {
	return o.maxRevisions
}

// RevisionRequested reports whether an unresolved revision request is pending.
func (o *Order) RevisionRequested() bool {
	return o.revisionRequested
}

// RevisionNotes returns a copy of the buyer's revision notes.
func (o *Order) RevisionNotes() []string {
	notes := make([]string, len(o.revisionNotes))
	copy(notes, o.revisionNotes)
	return notes
}

// TransitionLog returns a copy of the append-only transition log.
func (o *Order) TransitionLog() []TransitionEntry {
	log := make([]TransitionEntry, len(o.transitionLog))
	copy(log, o.transitionLog)
	return log
}

// CreatedAt returns when the order was created.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns when the order was last mutated.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setParties(listingID, buyerID, sellerID kernel.UUID, offerID *kernel.UUID) error {
	if err := errors.Join(
		listingID.Validate(),
		buyerID.Validate(),
		sellerID.Validate(),
	); err != nil {
		return err
	}

	if buyerID.IsEqual(sellerID) {
		return errs.NewValueIsInvalidErrorWithCause("sellerID",
			fmt.Errorf("buyer and seller must be different users"))
	}

	if offerID != nil {
		if err := offerID.Validate(); err != nil {
			return err
		}
	}

	o.listingID = listingID
	o.buyerID = buyerID
	o.sellerID = sellerID
	o.offerID = offerID
	return nil
}

func (o *Order) setPrice(price kernel.Money) error {
	if err := price.Validate(); err != nil {
		return err
	}
	o.price = price
	return nil
}

func (o *Order) setExpectedDeliveryDays(days int) error {
	if days <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("expectedDeliveryDays",
			fmt.Errorf("%d is not greater than 0", days))
	}
	o.expectedDeliveryDays = days
	return nil
}

func (o *Order) setMaxRevisions(maxRevisions int) error {
	if maxRevisions < 0 {
		return errs.NewValueIsInvalidErrorWithCause("maxRevisions",
			fmt.Errorf("%d is negative", maxRevisions))
	}
	if maxRevisions == 0 {
		maxRevisions = DefaultMaxRevisions
	}
	o.maxRevisions = maxRevisions
	return nil
}
