package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/financial"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Recalculator recomputes stored projections for many plans with a bounded worker pool.
type Recalculator struct {
	calc   Calculator
	lister PlanLister
	config RecalcConfig
}

// NewRecalculator creates a new batch recalculator
func NewRecalculator(calc Calculator, lister PlanLister, config RecalcConfig) *Recalculator {
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 1
	}
	return &Recalculator{
		calc:   calc,
		lister: lister,
		config: config,
	}
}

// RunStatus recalculates every plan with the given status; an empty status covers all plans.
func (r *Recalculator) RunStatus(ctx context.Context, status domain.PlanStatus) (*BatchReport, error) {
	planIDs, err := r.lister.ListPlanIDs(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	report, err := r.Run(ctx, planIDs)
	if report != nil {
		report.Status = status
	}
	return report, err
}

// Run recalculates the given plans. A failing plan does not stop the others;
// the returned error is only set when ctx is cancelled before every plan was queued.
func (r *Recalculator) Run(ctx context.Context, planIDs []int64) (*BatchReport, error) {
	report := &BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Outcomes:  make([]PlanOutcome, 0, len(planIDs)),
	}

	logger := log.With().Str("run_id", report.RunID).Logger()
	logger.Info().Int("plans", len(planIDs)).Int("workers", r.config.WorkerCount).Msg("recalculation started")

	jobChan := make(chan int64, len(planIDs))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		runErr error
	)

	for i := 0; i < r.config.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for planID := range jobChan {
				outcome := r.process(ctx, planID)
				if outcome.Status == JobStatusFailed {
					logger.Warn().
						Int("worker", workerID).
						Int64("plan_id", planID).
						Str("error", outcome.ErrorMessage).
						Msg("plan recalculation failed")
				}
				mu.Lock()
				report.Outcomes = append(report.Outcomes, outcome)
				mu.Unlock()
			}
		}(i)
	}

enqueue:
	for _, planID := range planIDs {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break enqueue
		case jobChan <- planID:
		}
	}
	close(jobChan)

	wg.Wait()

	sort.Slice(report.Outcomes, func(i, j int) bool {
		return report.Outcomes[i].PlanID < report.Outcomes[j].PlanID
	})
	report.CompletedAt = time.Now()

	logger.Info().
		Int("completed", report.Completed()).
		Int("failed", report.Failed()).
		Int("skipped", report.Skipped()).
		Dur("duration", report.Duration()).
		Msg("recalculation finished")

	return report, runErr
}

func (r *Recalculator) process(ctx context.Context, planID int64) PlanOutcome {
	start := time.Now()
	outcome := PlanOutcome{PlanID: planID}

	for attempt := 1; attempt <= r.config.RetryAttempts; attempt++ {
		outcome.Attempts = attempt

		if err := ctx.Err(); err != nil {
			outcome.Status = JobStatusFailed
			outcome.ErrorMessage = err.Error()
			break
		}

		result, err := r.calc.Calculate(ctx, planID)
		if err == nil {
			outcome.Status = JobStatusCompleted
			outcome.ProjectionsCount = result.ProjectionsCount
			outcome.BreakevenMonths = result.Summary.BreakevenMonths
			outcome.ErrorMessage = ""
			break
		}

		outcome.ErrorMessage = err.Error()
		if isIncomplete(err) {
			outcome.Status = JobStatusSkipped
			break
		}
		outcome.Status = JobStatusFailed
		if !isRetryable(err) || attempt == r.config.RetryAttempts {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(r.config.RetryBackoff):
		}
	}

	outcome.Duration = time.Since(start)
	return outcome
}

// isIncomplete reports plans whose form has not been filled in yet.
func isIncomplete(err error) bool {
	return errors.Is(err, financial.ErrMissingInput)
}

func isRetryable(err error) bool {
	switch {
	case errors.Is(err, financial.ErrInvalidValue),
		errors.Is(err, financial.ErrMalformedProjection),
		errors.Is(err, repository.ErrPlanNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}
