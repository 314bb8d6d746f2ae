package jobs

import (
	"context"
	"log/slog"
	"time"

	"marketorder/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// OrderAutoCompleteJob completes delivered orders the buyer never accepted or
// sent back within the acceptance window. Runs hourly; each run completes every
// order whose delivery is older than the configured number of days, capturing
// the payment hold exactly as a buyer acceptance would.
type OrderAutoCompleteJob struct {
	handler   commands.CompleteDeliveredOrdersCommandHandler
	cron      *cron.Cron
	logger    *slog.Logger
	afterDays int
}

// NewOrderAutoCompleteJob creates the auto-complete job.
// afterDays is how long a delivered order waits for the buyer before the
// platform completes it.
func NewOrderAutoCompleteJob(
	handler commands.CompleteDeliveredOrdersCommandHandler,
	afterDays int,
	logger *slog.Logger,
) *OrderAutoCompleteJob {
	return &OrderAutoCompleteJob{
		handler:   handler,
		cron:      cron.New(),
		logger:    logger.With("component", "order_autocomplete_job"),
		afterDays: afterDays,
	}
}

// Start begins the auto-complete job, running at the top of every hour.
func (j *OrderAutoCompleteJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * *", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().AddDate(0, 0, -j.afterDays)

		cmd, err := commands.NewCompleteDeliveredOrdersCommand(cutoff)
		if err != nil {
			j.logger.ErrorContext(ctx, "Order auto-complete job misconfigured", "error", err)
			return
		}

		completed, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Order auto-complete job failed", "error", err)
			return
		}

		if completed > 0 {
			j.logger.InfoContext(ctx, "Order auto-complete job finished",
				"completed", completed, "cutoff", cutoff)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Order auto-complete job started (running hourly)",
		"after_days", j.afterDays)
	return nil
}

// Stop stops the auto-complete job.
func (j *OrderAutoCompleteJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Order auto-complete job stopped")
}
