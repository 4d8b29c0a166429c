package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type financialRepository struct {
	db *DB
}

func NewFinancialRepository(db *DB) *financialRepository {
	return &financialRepository{db: db}
}

var _ repository.FinancialRepository = (*financialRepository)(nil)

func (r *financialRepository) GetPlan(ctx context.Context, planID int64) (*domain.Plan, error) {
	query := `
		SELECT id, business_name, status, created_at, updated_at
		FROM plans
		WHERE id = $1
	`

	var plan domain.Plan
	if err := sqlx.GetContext(ctx, r.db, &plan, query, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan %d: %w", planID, err)
	}

	return &plan, nil
}

func (r *financialRepository) GetPlanInputs(ctx context.Context, planID int64) (*domain.PlanInputs, error) {
	inputs := &domain.PlanInputs{PlanID: planID}

	var investment domain.InvestmentProfile
	found, err := r.getOptional(ctx, &investment, `
		SELECT total_investment_amount, land_cost, building_cost, machinery_cost,
		       working_capital, other_costs, own_contribution, loan_required
		FROM plan_investment_profiles
		WHERE plan_id = $1
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get investment profile: %w", err)
	}
	if found {
		inputs.Investment = &investment
	}

	var economics domain.UnitEconomics
	found, err = r.getOptional(ctx, &economics, `
		SELECT product_price, monthly_sales_quantity_year1, monthly_sales_quantity_year2,
		       monthly_sales_quantity_year3, growth_rate_percentage
		FROM plan_unit_economics
		WHERE plan_id = $1
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit economics: %w", err)
	}
	if found {
		inputs.Economics = &economics
	}

	var costs domain.MonthlyCostProfile
	found, err = r.getOptional(ctx, &costs, `
		SELECT raw_material_cost_monthly, labor_cost_monthly, utilities_cost_monthly,
		       rent_monthly, marketing_cost_monthly, other_fixed_costs_monthly
		FROM plan_monthly_costs
		WHERE plan_id = $1
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly costs: %w", err)
	}
	if found {
		inputs.Costs = &costs
	}

	return inputs, nil
}

func (r *financialRepository) getOptional(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := sqlx.GetContext(ctx, r.db, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListPlanIDs returns plans that have all three input groups, optionally
// restricted to one status.
func (r *financialRepository) ListPlanIDs(ctx context.Context, status domain.PlanStatus) ([]int64, error) {
	query := `
		SELECT p.id
		FROM plans p
		JOIN plan_investment_profiles i ON i.plan_id = p.id
		JOIN plan_unit_economics e ON e.plan_id = p.id
		JOIN plan_monthly_costs c ON c.plan_id = p.id
		WHERE ($1 = '' OR p.status = $1)
		ORDER BY p.id
	`

	var ids []int64
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, string(status)); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return ids, nil
}

func (r *financialRepository) ReplaceCalculation(ctx context.Context, planID int64, rows []domain.MonthlyProjection, summary domain.FinancialSummary) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// 1. Drop the previous calculation
		if _, err := tx.ExecContext(ctx, `DELETE FROM financial_projections WHERE plan_id = $1`, planID); err != nil {
			return fmt.Errorf("failed to delete projections: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM financial_summaries WHERE plan_id = $1`, planID); err != nil {
			return fmt.Errorf("failed to delete summary: %w", err)
		}

		// 2. Insert the new projection rows
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO financial_projections (
				plan_id, month_number, revenue, fixed_costs,
				variable_costs, profit_loss, cumulative_profit_loss
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(
				ctx,
				planID,
				row.MonthNumber,
				row.Revenue,
				row.FixedCosts,
				row.VariableCosts,
				row.ProfitLoss,
				row.CumulativeProfitLoss,
			)
			if err != nil {
				return fmt.Errorf("failed to insert projection for month %d: %w", row.MonthNumber, err)
			}
		}

		// 3. Insert the summary
		_, err = tx.ExecContext(ctx, `
			INSERT INTO financial_summaries (
				plan_id, breakeven_months, roi_percentage, payback_period_months,
				npv, profit_margin_percentage, calculated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			planID,
			summary.BreakevenMonths,
			summary.ROIPercentage,
			summary.PaybackPeriodMonths,
			summary.NPV,
			summary.ProfitMarginPercentage,
			summary.CalculatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert summary: %w", err)
		}

		return nil
	})
}

func (r *financialRepository) GetProjections(ctx context.Context, planID int64) ([]domain.MonthlyProjection, error) {
	query := `
		SELECT month_number, revenue, fixed_costs, variable_costs,
		       profit_loss, cumulative_profit_loss
		FROM financial_projections
		WHERE plan_id = $1
		ORDER BY month_number ASC
	`

	var rows []domain.MonthlyProjection
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, planID); err != nil {
		return nil, fmt.Errorf("failed to get projections: %w", err)
	}

	return rows, nil
}

func (r *financialRepository) GetSummary(ctx context.Context, planID int64) (*domain.FinancialSummary, error) {
	query := `
		SELECT breakeven_months, roi_percentage, payback_period_months,
		       npv, profit_margin_percentage, calculated_at
		FROM financial_summaries
		WHERE plan_id = $1
	`

	var summary domain.FinancialSummary
	if err := sqlx.GetContext(ctx, r.db, &summary, query, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoSummary
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return &summary, nil
}
