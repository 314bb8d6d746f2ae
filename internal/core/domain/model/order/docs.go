// Package order provides domain entities and business logic for marketplace order
// management. It implements the Order aggregate root with lifecycle management,
// role-gated state transitions, and an append-only transition log.
//
// The package includes:
//   - Order: The aggregate root that owns commercial, payment, and fulfillment state
//   - Status: A state machine that enforces valid order status transitions
//   - Actor: The role attempting a transition (buyer, seller, payment gateway, system)
//
// Key business rules:
//   - Status moves only along the edges of a single transition table:
//     pending_payment -> paid -> processing -> in_progress -> delivered -> completed,
//     with a bounded delivered -> in_revision -> delivered rework loop and
//     cancellation exits from pending_payment, paid, and processing only
//   - Each edge is restricted to specific actor roles
//   - Re-requesting the current status is an idempotent no-op
//   - The seller payout is always recomputed as amount minus the platform fee
//   - Buyer, seller, and listing references are immutable after creation
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
