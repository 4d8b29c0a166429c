package repository

import (
	"context"
	"errors"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
)

var (
	ErrPlanNotFound  = errors.New("plan not found")
	ErrNoProjections = errors.New("no financial projections found, calculate projections first")
	ErrNoSummary     = errors.New("no financial summary found, calculate projections first")
)

// FinancialRepository is the record store for plan inputs and calculated results.
type FinancialRepository interface {
	GetPlan(ctx context.Context, planID int64) (*domain.Plan, error)
	// GetPlanInputs returns the stored input groups; groups not yet filled in are nil.
	GetPlanInputs(ctx context.Context, planID int64) (*domain.PlanInputs, error)
	ListPlanIDs(ctx context.Context, status domain.PlanStatus) ([]int64, error)

	// ReplaceCalculation drops any previous projection and summary for the plan
	// and stores the new ones atomically.
	ReplaceCalculation(ctx context.Context, planID int64, rows []domain.MonthlyProjection, summary domain.FinancialSummary) error
	GetProjections(ctx context.Context, planID int64) ([]domain.MonthlyProjection, error)
	GetSummary(ctx context.Context, planID int64) (*domain.FinancialSummary, error)
}
