package order_test

import (
	"errors"
	"math/rand"
	"testing"

	"marketorder/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Validate(t *testing.T) {
	t.Run("valid statuses pass validation", func(t *testing.T) {
		statuses := []order.Status{
			order.PendingPayment, order.Paid, order.Processing, order.InProgress,
			order.Delivered, order.InRevision, order.Completed, order.Cancelled,
		}
		for _, s := range statuses {
			assert.NoError(t, s.Validate(), "status %s should be valid", s)
		}
	})

	t.Run("unknown and out-of-range values fail validation", func(t *testing.T) {
		assert.Error(t, order.Unknown.Validate())
		assert.Error(t, order.Status(99).Validate())
		assert.Error(t, order.Status(-1).Validate())
	})
}

func TestStatus_String(t *testing.T) {
	cases := map[order.Status]string{
		order.PendingPayment: "pending_payment",
		order.Paid:           "paid",
		order.Processing:     "processing",
		order.InProgress:     "in_progress",
		order.Delivered:      "delivered",
		order.InRevision:     "in_revision",
		order.Completed:      "completed",
		order.Cancelled:      "cancelled",
		order.Unknown:        "unknown",
		order.Status(42):     "unknown",
	}
	for status, expected := range cases {
		assert.Equal(t, expected, status.String())
	}
}

func TestParseStatus(t *testing.T) {
	t.Run("round-trips every valid status", func(t *testing.T) {
		for _, s := range []order.Status{
			order.PendingPayment, order.Paid, order.Processing, order.InProgress,
			order.Delivered, order.InRevision, order.Completed, order.Cancelled,
		} {
			parsed, err := order.ParseStatus(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("rejects unknown strings", func(t *testing.T) {
		for _, input := range []string{"", "unknown", "PAID", "shipped"} {
			_, err := order.ParseStatus(input)
			assert.Error(t, err, "expected error for input %q", input)
		}
	})
}

func TestStatus_ValidateTransition(t *testing.T) {
	type edge struct {
		from  order.Status
		to    order.Status
		actor order.Actor
	}

	t.Run("every table edge is allowed for its actor", func(t *testing.T) {
		allowed := []edge{
			{order.PendingPayment, order.Paid, order.ActorPaymentGateway},
			{order.PendingPayment, order.Cancelled, order.ActorBuyer},
			{order.PendingPayment, order.Cancelled, order.ActorSeller},
			{order.Paid, order.Processing, order.ActorSeller},
			{order.Paid, order.Cancelled, order.ActorBuyer},
			{order.Paid, order.Cancelled, order.ActorSeller},
			{order.Processing, order.InProgress, order.ActorSeller},
			{order.Processing, order.Cancelled, order.ActorBuyer},
			{order.Processing, order.Cancelled, order.ActorSeller},
			{order.InProgress, order.Delivered, order.ActorSeller},
			{order.Delivered, order.Completed, order.ActorBuyer},
			{order.Delivered, order.Completed, order.ActorSystem},
			{order.Delivered, order.InRevision, order.ActorBuyer},
			{order.InRevision, order.Delivered, order.ActorSeller},
		}
		for _, e := range allowed {
			assert.NoError(t, e.from.ValidateTransition(e.to, e.actor),
				"%s -> %s by %s should be allowed", e.from, e.to, e.actor)
		}
	})

	t.Run("missing edges fail with InvalidTransition", func(t *testing.T) {
		missing := []edge{
			{order.PendingPayment, order.Processing, order.ActorSeller},
			{order.Paid, order.InProgress, order.ActorSeller},
			{order.Paid, order.Delivered, order.ActorSeller},
			{order.InProgress, order.Cancelled, order.ActorBuyer},
			{order.InProgress, order.Completed, order.ActorBuyer},
			{order.Delivered, order.InProgress, order.ActorSeller},
			{order.Delivered, order.Cancelled, order.ActorBuyer},
			{order.Completed, order.Delivered, order.ActorSeller},
			{order.Cancelled, order.PendingPayment, order.ActorBuyer},
		}
		for _, e := range missing {
			err := e.from.ValidateTransition(e.to, e.actor)
			require.Error(t, err, "%s -> %s should not exist", e.from, e.to)
			assert.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("existing edges with wrong actor fail with Forbidden", func(t *testing.T) {
		forbidden := []edge{
			{order.PendingPayment, order.Paid, order.ActorBuyer},
			{order.Paid, order.Processing, order.ActorBuyer},
			{order.InProgress, order.Delivered, order.ActorBuyer},
			{order.Delivered, order.InRevision, order.ActorSeller},
			{order.Delivered, order.Completed, order.ActorSeller},
			{order.InRevision, order.Delivered, order.ActorBuyer},
		}
		for _, e := range forbidden {
			err := e.from.ValidateTransition(e.to, e.actor)
			require.Error(t, err)
			assert.ErrorIs(t, err, order.ErrForbidden,
				"%s -> %s by %s should be forbidden", e.from, e.to, e.actor)
		}
	})

	t.Run("terminal states allow nothing", func(t *testing.T) {
		actors := []order.Actor{
			order.ActorBuyer, order.ActorSeller, order.ActorPaymentGateway, order.ActorSystem,
		}
		for _, terminal := range []order.Status{order.Completed, order.Cancelled} {
			assert.True(t, terminal.IsTerminal())
			assert.Empty(t, terminal.AllowedTransitions())
			for _, actor := range actors {
				for _, target := range []order.Status{
					order.PendingPayment, order.Paid, order.Processing, order.InProgress,
					order.Delivered, order.InRevision, order.Completed, order.Cancelled,
				} {
					if target == terminal {
						continue
					}
					err := terminal.ValidateTransition(target, actor)
					assert.ErrorIs(t, err, order.ErrInvalidTransition)
				}
			}
		}
	})
}

func TestStatus_AllowedTransitions(t *testing.T) {
	assert.Equal(t,
		[]order.Status{order.Paid, order.Cancelled},
		order.PendingPayment.AllowedTransitions())
	assert.Equal(t,
		[]order.Status{order.Delivered, order.InRevision, order.Completed},
		sortedUnion(order.Delivered.AllowedTransitions(), order.InRevision.AllowedTransitions()))
	assert.Equal(t,
		[]order.Status{order.InRevision, order.Completed},
		order.Delivered.AllowedTransitionsFor(order.ActorBuyer))
	assert.Empty(t, order.Delivered.AllowedTransitionsFor(order.ActorSeller))
	assert.Equal(t,
		[]order.Status{order.Completed},
		order.Delivered.AllowedTransitionsFor(order.ActorSystem))
}

func sortedUnion(a, b []order.Status) []order.Status {
	seen := map[order.Status]bool{}
	for _, s := range append(a, b...) {
		seen[s] = true
	}
	var out []order.Status
	for _, s := range []order.Status{
		order.PendingPayment, order.Paid, order.Processing, order.InProgress,
		order.Delivered, order.InRevision, order.Completed, order.Cancelled,
	} {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out
}

// TestStatus_RandomTransitionSequences drives random requested transitions and
// asserts that every accepted one matches the table and every rejected one
// produces an InvalidTransition or Forbidden classification.
func TestStatus_RandomTransitionSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	statuses := []order.Status{
		order.PendingPayment, order.Paid, order.Processing, order.InProgress,
		order.Delivered, order.InRevision, order.Completed, order.Cancelled,
	}
	actors := []order.Actor{
		order.ActorBuyer, order.ActorSeller, order.ActorPaymentGateway, order.ActorSystem,
	}

	for run := 0; run < 100; run++ {
		current := order.PendingPayment
		for step := 0; step < 50; step++ {
			target := statuses[rng.Intn(len(statuses))]
			actor := actors[rng.Intn(len(actors))]
			if target == current {
				continue
			}

			err := current.ValidateTransition(target, actor)
			if err == nil {
				inTable := false
				for _, allowed := range current.AllowedTransitionsFor(actor) {
					if allowed == target {
						inTable = true
					}
				}
				require.True(t, inTable,
					"accepted transition %s -> %s by %s is not in the table", current, target, actor)
				current = target
				continue
			}

			require.True(t,
				errors.Is(err, order.ErrInvalidTransition) || errors.Is(err, order.ErrForbidden),
				"rejected transition %s -> %s by %s returned unexpected error %v",
				current, target, actor, err)
		}
	}
}
