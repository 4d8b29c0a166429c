package pipeline

import (
	"context"
	"time"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
)

// Calculator recomputes and stores one plan's projection.
type Calculator interface {
	Calculate(ctx context.Context, planID int64) (*domain.CalculationResult, error)
}

// PlanLister returns the plans a batch should cover.
type PlanLister interface {
	ListPlanIDs(ctx context.Context, status domain.PlanStatus) ([]int64, error)
}

// RecalcConfig holds configuration for a batch recalculation.
type RecalcConfig struct {
	WorkerCount   int           // Number of concurrent workers
	RetryAttempts int           // Attempts per plan, including the first
	RetryBackoff  time.Duration // Backoff duration between attempts
}

// DefaultRecalcConfig returns sensible defaults
func DefaultRecalcConfig() RecalcConfig {
	return RecalcConfig{
		WorkerCount:   4,
		RetryAttempts: 2,
		RetryBackoff:  time.Second,
	}
}

// JobStatus represents the outcome of a single plan job
type JobStatus string

const (
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusSkipped   JobStatus = "skipped"
)

// PlanOutcome records what happened to one plan in a batch.
type PlanOutcome struct {
	PlanID           int64         `json:"plan_id"`
	Status           JobStatus     `json:"status"`
	ProjectionsCount int           `json:"projections_count,omitempty"`
	BreakevenMonths  int           `json:"breakeven_months,omitempty"`
	Attempts         int           `json:"attempts"`
	ErrorMessage     string        `json:"error_message,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// BatchReport tracks a single execution of a recalculation batch.
type BatchReport struct {
	RunID       string            `json:"run_id"`
	Status      domain.PlanStatus `json:"status_filter"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Outcomes    []PlanOutcome     `json:"outcomes"`
}

func (r *BatchReport) count(status JobStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

func (r *BatchReport) Completed() int { return r.count(JobStatusCompleted) }
func (r *BatchReport) Failed() int    { return r.count(JobStatusFailed) }
func (r *BatchReport) Skipped() int   { return r.count(JobStatusSkipped) }

func (r *BatchReport) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
