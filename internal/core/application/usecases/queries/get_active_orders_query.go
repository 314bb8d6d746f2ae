package queries

import (
	"errors"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/pkg/guard"
)

var (
	ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
		"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
	)
)

// GetActiveOrdersQuery retrieves every non-terminal order in which the user
// participates as buyer or seller. Completed and cancelled orders are excluded.
//
// Example:
//
//	query, err := NewGetActiveOrdersQuery(userID)
//	if err != nil {
//	    return err
//	}
//	orders, err := handler.Handle(ctx, query)
type GetActiveOrdersQuery struct { //nolint:recvcheck //using for validation
	userID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetActiveOrdersQuery creates a query for the user's active orders.
func NewGetActiveOrdersQuery(userID kernel.UUID) (GetActiveOrdersQuery, error) {
	if err := userID.Validate(); err != nil {
		return GetActiveOrdersQuery{}, err
	}

	return GetActiveOrdersQuery{
		userID: userID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetActiveOrdersQueryIsNotConstructed if validation fails.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

// UserID returns the user whose active orders are requested.
func (q GetActiveOrdersQuery) UserID() kernel.UUID {
	return q.userID
}
