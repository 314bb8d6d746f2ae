package order

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the transition failure taxonomy. Callers classify
// failures with errors.Is and map them to transport-level responses.
var (
	ErrInvalidTransition         = errors.New("invalid transition")
	ErrForbidden                 = errors.New("forbidden")
	ErrRevisionLimitExceeded     = errors.New("revision limit exceeded")
	ErrPaymentPreconditionFailed = errors.New("payment precondition failed")
)

// InvalidTransitionError indicates that the requested edge does not exist in the
// transition table. Allowed carries the currently reachable target statuses so
// clients can self-correct.
type InvalidTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given edge,
// capturing the targets reachable from the current status.
func NewInvalidTransitionError(from, to Status) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Allowed: from.AllowedTransitions()}
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s: %s -> %s (no transitions allowed from %s)",
			ErrInvalidTransition, e.From, e.To, e.From)
	}

	names := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		names[i] = s.String()
	}
	return fmt.Sprintf("%s: %s -> %s (allowed: %s)",
		ErrInvalidTransition, e.From, e.To, strings.Join(names, ", "))
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ForbiddenError indicates that the requested edge exists but the acting role is
// not permitted to request it.
type ForbiddenError struct {
	Actor Actor
	From  Status
	To    Status
}

// NewForbiddenError creates a ForbiddenError for the given actor and edge.
func NewForbiddenError(actor Actor, from, to Status) *ForbiddenError {
	return &ForbiddenError{Actor: actor, From: from, To: to}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: actor %s may not transition %s -> %s",
		ErrForbidden, e.Actor, e.From, e.To)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// RevisionLimitExceededError indicates that a revision request would exceed the
// order's maximum allowed revisions.
type RevisionLimitExceededError struct {
	Requested int
	Max       int
}

// NewRevisionLimitExceededError creates a RevisionLimitExceededError.
func NewRevisionLimitExceededError(requested, maxRevisions int) *RevisionLimitExceededError {
	return &RevisionLimitExceededError{Requested: requested, Max: maxRevisions}
}

func (e *RevisionLimitExceededError) Error() string {
	return fmt.Sprintf("%s: revision %d exceeds the maximum of %d",
		ErrRevisionLimitExceeded, e.Requested, e.Max)
}

func (e *RevisionLimitExceededError) Unwrap() error {
	return ErrRevisionLimitExceeded
}

// PaymentPreconditionFailedError indicates that a transition's payment
// prerequisite does not hold: entering paid without a confirmed gateway callback,
// or entering completed while the hold is not confirmed for capture.
type PaymentPreconditionFailedError struct {
	Target Status
	Reason string
}

// NewPaymentPreconditionFailedError creates a PaymentPreconditionFailedError.
func NewPaymentPreconditionFailedError(target Status, reason string) *PaymentPreconditionFailedError {
	return &PaymentPreconditionFailedError{Target: target, Reason: reason}
}

func (e *PaymentPreconditionFailedError) Error() string {
	return fmt.Sprintf("%s: cannot enter %s: %s", ErrPaymentPreconditionFailed, e.Target, e.Reason)
}

func (e *PaymentPreconditionFailedError) Unwrap() error {
	return ErrPaymentPreconditionFailed
}
