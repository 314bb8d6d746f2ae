// Package jobs provides scheduled background tasks for the marketplace order
// service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations of the order lifecycle.
//
// # Available Jobs
//
// 1. OrderAutoCompleteJob - Runs hourly to complete delivered orders whose
// acceptance window has elapsed without buyer action, releasing the payment
// hold to the seller.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(completeDeliveredHandler, autoCompleteAfterDays, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and retried on the next tick; orders contested by a
// concurrent buyer or seller action are skipped and picked up again later.
package jobs
