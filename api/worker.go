/*
worker.go - Background billing worker

PURPOSE:
  Periodically enqueues billing jobs for active contracts and drains
  the job queue, generating one invoice per contract per period.

DESIGN:
  - Runs a background goroutine with a configurable tick interval
  - Each pass has two phases:
      1. Enqueue: for every active contract, create a pending job for
         the current billing period unless one already exists or the
         period is already invoiced
      2. Drain: claim due jobs (pending, run_at <= now) and generate
         invoices; failures retry with exponential backoff until the
         attempt budget is exhausted
  - The duplicate-invoice guard in the store makes a pass safe to
    repeat: a job racing an on-demand invoice run completes without
    writing a second invoice

CONFIGURATION:
  - Interval:  how often a pass runs (default: 1 minute)
  - BatchSize: max due jobs claimed per pass (default: 50)
  - Enabled:   whether the worker runs at all

USAGE:
  worker := NewBillingWorker(store, handler, logger)
  worker.Start()
  // ... later
  worker.Stop()

SEE ALSO:
  - billing/jobs.go: Job state machine and backoff schedule
  - handlers.go: BillContract (shared invoice generation path)
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/pricing"
	"github.com/warp/revenue-engine/store/sqlite"
)

// BillingWorker drives periodic invoice generation.
type BillingWorker struct {
	Store     *sqlite.Store
	Handler   *Handler
	Log       *zap.Logger
	Interval  time.Duration
	BatchSize int
	Enabled   bool

	// Now is swappable in tests.
	Now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// PassStats summarizes one worker pass.
type PassStats struct {
	Enqueued  int `json:"enqueued"`
	Completed int `json:"completed"`
	Retried   int `json:"retried"`
	Failed    int `json:"failed"`
}

// NewBillingWorker creates a worker with default tuning.
func NewBillingWorker(store *sqlite.Store, handler *Handler, log *zap.Logger) *BillingWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &BillingWorker{
		Store:     store,
		Handler:   handler,
		Log:       log,
		Interval:  time.Minute,
		BatchSize: 50,
		Enabled:   true,
		Now:       func() time.Time { return time.Now().UTC() },
		stop:      make(chan struct{}),
	}
}

// Start begins the background loop. A pass runs immediately, then on
// every tick.
func (bw *BillingWorker) Start() {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if !bw.Enabled {
		bw.Log.Info("billing worker disabled, not starting")
		return
	}

	bw.ticker = time.NewTicker(bw.Interval)
	bw.wg.Add(1)
	go bw.run()

	bw.Log.Info("billing worker started", zap.Duration("interval", bw.Interval))
}

// Stop stops the background loop and waits for an in-flight pass.
func (bw *BillingWorker) Stop() {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.ticker != nil {
		bw.ticker.Stop()
		close(bw.stop)
		bw.wg.Wait()
		bw.Log.Info("billing worker stopped")
	}
}

func (bw *BillingWorker) run() {
	defer bw.wg.Done()

	bw.RunNow(context.Background())

	for {
		select {
		case <-bw.ticker.C:
			bw.RunNow(context.Background())
		case <-bw.stop:
			return
		}
	}
}

// RunNow executes one full pass (enqueue + drain) and returns its
// stats. Also used by the POST /api/jobs/run endpoint.
func (bw *BillingWorker) RunNow(ctx context.Context) PassStats {
	now := bw.Now()
	var stats PassStats

	bw.enqueue(ctx, now, &stats)
	bw.drain(ctx, now, &stats)

	if stats != (PassStats{}) {
		bw.Log.Info("billing pass completed",
			zap.Int("enqueued", stats.Enqueued),
			zap.Int("completed", stats.Completed),
			zap.Int("retried", stats.Retried),
			zap.Int("failed", stats.Failed))
	}
	return stats
}

// enqueue creates a pending job for every active contract whose current
// billing period has neither a job nor an invoice yet.
func (bw *BillingWorker) enqueue(ctx context.Context, now time.Time, stats *PassStats) {
	contracts, err := bw.Store.ListActiveContracts(ctx)
	if err != nil {
		bw.Log.Error("failed to list active contracts", zap.Error(err))
		return
	}

	for _, contract := range contracts {
		period := contract.Cycle.PeriodFor(pricing.Day(now))
		if !contract.ActiveDuring(period) {
			continue
		}

		hasJob, err := bw.Store.HasJobForPeriod(ctx, contract.ID, period.Start, period.End)
		if err != nil {
			bw.Log.Error("failed to check jobs", zap.String("contract_id", contract.ID), zap.Error(err))
			continue
		}
		if hasJob {
			continue
		}

		hasInvoice, err := bw.Store.HasInvoiceForPeriod(ctx, contract.ID, period.Start, period.End)
		if err != nil {
			bw.Log.Error("failed to check invoices", zap.String("contract_id", contract.ID), zap.Error(err))
			continue
		}
		if hasInvoice {
			continue
		}

		job := billing.NewJob(contract.ID, period.Start, period.End, now)
		if err := bw.Store.SaveJob(ctx, job); err != nil {
			bw.Log.Error("failed to enqueue job", zap.String("contract_id", contract.ID), zap.Error(err))
			continue
		}
		stats.Enqueued++

		bw.Log.Info("billing job enqueued",
			zap.String("job_id", job.ID),
			zap.String("contract_id", contract.ID),
			zap.String("period", period.String()))
	}
}

// drain claims due jobs and generates their invoices.
func (bw *BillingWorker) drain(ctx context.Context, now time.Time, stats *PassStats) {
	jobs, err := bw.Store.DueJobs(ctx, now, bw.BatchSize)
	if err != nil {
		bw.Log.Error("failed to list due jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		if err := job.Claim(now); err != nil {
			continue
		}
		if err := bw.Store.SaveJob(ctx, job); err != nil {
			bw.Log.Error("failed to claim job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}

		bw.process(ctx, &job, now)

		if err := bw.Store.SaveJob(ctx, job); err != nil {
			bw.Log.Error("failed to save job result", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}

		switch job.Status {
		case billing.JobCompleted:
			stats.Completed++
		case billing.JobPending:
			stats.Retried++
		case billing.JobFailed:
			stats.Failed++
		}
	}
}

// process generates the invoice for one claimed job and records the
// outcome on the job.
func (bw *BillingWorker) process(ctx context.Context, job *billing.Job, now time.Time) {
	invoice, err := bw.Handler.BillContract(ctx, job.ContractID, job.PeriodStart)
	if err == nil {
		job.Complete(invoice.ID, now)
		return
	}

	// Someone invoiced the period between enqueue and drain (on-demand
	// run, or a racing worker). The work is done; don't retry.
	if errors.Is(err, billing.ErrDuplicateInvoice) {
		job.Complete("", now)
		return
	}

	job.Fail(err, now)
	bw.Log.Warn("billing job failed",
		zap.String("job_id", job.ID),
		zap.String("contract_id", job.ContractID),
		zap.Int("attempt", job.Attempts),
		zap.String("status", string(job.Status)),
		zap.Error(err))
}
