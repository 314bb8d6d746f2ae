package order

import (
	"fmt"

	"marketorder/internal/pkg/errs"
)

// Status represents the lifecycle state of a marketplace order.
// It implements a state machine with a single transition table that is the only
// source of truth for which status changes are legal and which role may request them.
//
// State transitions:
//
//	pending_payment ──> paid ──> processing ──> in_progress ──> delivered ──> completed
//	       │             │            │                             │  ▲
//	       │             │            │                             ▼  │
//	       └─────────────┴────────────┴──> cancelled           in_revision
//
// Delivery is only revisited through in_revision; cancellation is possible only
// before fulfillment work has started. completed and cancelled are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// PendingPayment is the initial status: the order exists but the payment
	// hold has not been confirmed by the payment gateway yet.
	PendingPayment

	// Paid indicates the payment gateway confirmed the hold on the buyer's funds.
	Paid

	// Processing indicates the seller acknowledged the order and is preparing it.
	Processing

	// InProgress indicates the seller started the actual fulfillment work.
	InProgress

	// Delivered indicates the seller submitted the work for buyer review.
	Delivered

	// InRevision indicates the buyer rejected the delivery and requested rework.
	InRevision

	// Completed indicates the buyer accepted the delivery and the payment hold
	// was captured for the seller. Terminal.
	Completed

	// Cancelled indicates the order was abandoned before fulfillment started
	// and the payment hold was voided. Terminal.
	Cancelled
)

// Actor is the role requesting a status transition. Roles are derived server-side
// from authenticated identity, never trusted from client input.
type Actor int

const (
	// ActorUnknown represents an unresolved role; it may not perform any transition.
	ActorUnknown Actor = iota

	// ActorBuyer is the user matching the order's buyer reference.
	ActorBuyer

	// ActorSeller is the user matching the order's seller reference.
	ActorSeller

	// ActorPaymentGateway is the payment collaborator's confirmation callback.
	ActorPaymentGateway

	// ActorSystem is an internal scheduled collaborator, e.g. the auto-complete job.
	ActorSystem
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		PendingPayment: "pending_payment",
		Paid:           "paid",
		Processing:     "processing",
		InProgress:     "in_progress",
		Delivered:      "delivered",
		InRevision:     "in_revision",
		Completed:      "completed",
		Cancelled:      "cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		PendingPayment: "pending_payment",
		Paid:           "paid",
		Processing:     "processing",
		InProgress:     "in_progress",
		Delivered:      "delivered",
		InRevision:     "in_revision",
		Completed:      "completed",
		Cancelled:      "cancelled",
	}
}

// statusOrder fixes the iteration order for AllowedTransitions so responses are
// deterministic.
func statusOrder() []Status {
	return []Status{PendingPayment, Paid, Processing, InProgress, Delivered, InRevision, Completed, Cancelled}
}

// transitionTable maps every legal edge to the roles allowed to request it.
// This table is the single source of truth consulted by server-side validation
// and by the "what actions are available" read models.
func transitionTable() map[Status]map[Status][]Actor {
	return map[Status]map[Status][]Actor{
		PendingPayment: {
			Paid:      {ActorPaymentGateway},
			Cancelled: {ActorBuyer, ActorSeller},
		},
		Paid: {
			Processing: {ActorSeller},
			Cancelled:  {ActorBuyer, ActorSeller},
		},
		Processing: {
			InProgress: {ActorSeller},
			Cancelled:  {ActorBuyer, ActorSeller},
		},
		InProgress: {
			Delivered: {ActorSeller},
		},
		Delivered: {
			Completed:  {ActorBuyer, ActorSystem},
			InRevision: {ActorBuyer},
		},
		InRevision: {
			Delivered: {ActorSeller},
		},
	}
}

// ParseStatus converts a wire-format string such as "in_progress" into a Status.
// Returns an error for unrecognized values.
func ParseStatus(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is a member of the closed status set.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire-format name of the status, e.g. "pending_payment".
// Returns "unknown" for invalid values. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// AllowedTransitions returns every target status reachable from s regardless of
// actor, in deterministic order. Used to populate InvalidTransitionError and the
// allowedTransitions field of API responses.
func (s Status) AllowedTransitions() []Status {
	edges := transitionTable()[s]
	targets := make([]Status, 0, len(edges))
	for _, candidate := range statusOrder() {
		if _, ok := edges[candidate]; ok {
			targets = append(targets, candidate)
		}
	}
	return targets
}

// AllowedTransitionsFor returns the target statuses the given actor may request
// from s, in deterministic order.
func (s Status) AllowedTransitionsFor(actor Actor) []Status {
	edges := transitionTable()[s]
	targets := make([]Status, 0, len(edges))
	for _, candidate := range statusOrder() {
		actors, ok := edges[candidate]
		if !ok {
			continue
		}
		for _, a := range actors {
			if a == actor {
				targets = append(targets, candidate)
				break
			}
		}
	}
	return targets
}

// ValidateTransition checks whether the edge s -> target exists and whether the
// actor may request it, without applying anything.
//
// Returns:
//   - nil when the transition is legal for the actor
//   - *InvalidTransitionError when the edge is not in the table
//   - *ForbiddenError when the edge exists but the actor's role is not allowed
func (s Status) ValidateTransition(target Status, actor Actor) error {
	actors, ok := transitionTable()[s][target]
	if !ok {
		return NewInvalidTransitionError(s, target)
	}

	for _, a := range actors {
		if a == actor {
			return nil
		}
	}
	return NewForbiddenError(actor, s, target)
}

func getActorStrings() map[Actor]string {
	return map[Actor]string{
		ActorUnknown:        "unknown",
		ActorBuyer:          "buyer",
		ActorSeller:         "seller",
		ActorPaymentGateway: "payment_gateway",
		ActorSystem:         "system",
	}
}

// String returns the wire-format name of the actor role, e.g. "buyer".
func (a Actor) String() string {
	if str, ok := getActorStrings()[a]; ok {
		return str
	}
	return "unknown"
}

// Validate checks that the actor is a resolvable role.
func (a Actor) Validate() error {
	if a == ActorUnknown {
		return errs.NewValueIsInvalidErrorWithCause("actor is invalid",
			fmt.Errorf("%d is not a valid actor", a))
	}
	if _, ok := getActorStrings()[a]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("actor is invalid",
			fmt.Errorf("%d is not a valid actor", a))
	}
	return nil
}
