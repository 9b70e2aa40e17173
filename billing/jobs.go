/*
jobs.go - Queued billing work

PURPOSE:
  A billing run is queued work: one job per contract per billing period.
  Jobs carry their own retry state so a crashed or failed run can be
  retried with exponential backoff instead of silently dropping revenue.

LIFECYCLE:
  pending --claim--> processing --complete--> completed
                          |
                          +--fail--> pending (attempts < max, RunAt pushed back)
                          +--fail--> failed  (attempts exhausted)

  Claiming is guarded: a job can only move to processing from pending,
  and only once its RunAt time has passed. The worker in the api package
  drives this state machine; persistence is the store's concern.

BACKOFF:
  Exponential, base 30s doubling per attempt (30s, 1m, 2m, ...), capped
  at 1h.

SEE ALSO:
  - api/worker.go: The polling worker that claims and runs jobs
  - store/sqlite: Job persistence
*/
package billing

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// JOB - One unit of queued billing work
// =============================================================================

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

const DefaultMaxAttempts = 3

type Job struct {
	ID         string
	ContractID string

	PeriodStart time.Time
	PeriodEnd   time.Time

	Status      JobStatus
	Attempts    int
	MaxAttempts int
	LastError   string

	// RunAt is the earliest time the job may be (re)claimed.
	RunAt time.Time

	// InvoiceID is set when the job completes.
	InvoiceID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJob creates a pending job for one contract and period, runnable
// immediately.
func NewJob(contractID string, periodStart, periodEnd, now time.Time) Job {
	return Job{
		ID:          uuid.NewString(),
		ContractID:  contractID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      JobPending,
		MaxAttempts: DefaultMaxAttempts,
		RunAt:       now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Runnable reports whether the job may be claimed at the given time.
func (j Job) Runnable(now time.Time) bool {
	return j.Status == JobPending && !now.Before(j.RunAt)
}

// Claim moves a runnable job to processing and counts the attempt.
func (j *Job) Claim(now time.Time) error {
	if !j.Runnable(now) {
		return ErrJobNotRunnable
	}
	j.Status = JobProcessing
	j.Attempts++
	j.UpdatedAt = now
	return nil
}

// Complete marks a processing job as done, recording the invoice it
// produced.
func (j *Job) Complete(invoiceID string, now time.Time) error {
	if j.Status != JobProcessing {
		return &StatusTransitionError{Entity: "job", From: string(j.Status), To: string(JobCompleted)}
	}
	j.Status = JobCompleted
	j.InvoiceID = invoiceID
	j.LastError = ""
	j.UpdatedAt = now
	return nil
}

// Fail records a processing failure. If attempts remain the job goes
// back to pending with RunAt pushed out by the backoff schedule;
// otherwise it is marked failed for good.
func (j *Job) Fail(cause error, now time.Time) error {
	if j.Status != JobProcessing {
		return &StatusTransitionError{Entity: "job", From: string(j.Status), To: string(JobFailed)}
	}
	j.LastError = cause.Error()
	j.UpdatedAt = now

	if j.Attempts >= j.MaxAttempts {
		j.Status = JobFailed
		return nil
	}
	j.Status = JobPending
	j.RunAt = now.Add(BackoffDelay(j.Attempts))
	return nil
}

// =============================================================================
// BACKOFF SCHEDULE
// =============================================================================

const (
	backoffBase = 30 * time.Second
	backoffCap  = time.Hour
)

// BackoffDelay returns the delay before retry number attempt+1:
// 30s after the first failure, doubling each attempt, capped at 1h.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := backoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= backoffCap {
			return backoffCap
		}
	}
	return delay
}
