// Package financial computes the month-by-month forecast of a business plan
// and the investment metrics derived from it. Everything here is pure: no I/O,
// no clock, no shared state.
package financial

import (
	"strconv"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// DefaultHorizonMonths is the projection length used by the service.
	DefaultHorizonMonths = 36

	// MaxHorizonMonths caps a projection at ten years.
	MaxHorizonMonths = 120

	// monthsPerTier is the width of each sales-quantity band.
	monthsPerTier = 12
)

// ComputeProjection builds one row per month for horizonMonths months.
//
// Monthly volume is flat within each 12-month band (year 1, 2, 3); months past
// 36 keep the year-3 volume. Raw material is charged as a constant monthly amount
// whatever the volume, and the growth rate is not applied.
func ComputeProjection(
	investment *domain.InvestmentProfile,
	economics *domain.UnitEconomics,
	costs *domain.MonthlyCostProfile,
	horizonMonths int,
) ([]domain.MonthlyProjection, error) {
	if err := ValidateInputs(investment, economics, costs); err != nil {
		return nil, err
	}
	if horizonMonths <= 0 {
		return nil, &InvalidValueError{
			Field:  "horizon_months",
			Value:  strconv.Itoa(horizonMonths),
			Reason: "must be greater than 0",
		}
	}
	if horizonMonths > MaxHorizonMonths {
		return nil, &InvalidValueError{
			Field:  "horizon_months",
			Value:  strconv.Itoa(horizonMonths),
			Reason: "must not exceed " + strconv.Itoa(MaxHorizonMonths),
		}
	}

	// 1. Fixed costs = labor + utilities + rent + marketing + other fixed
	fixed := costs.FixedMonthly()

	// 2. Variable costs = raw material, constant for every month
	variable := costs.RawMaterialCostMonthly

	rows := make([]domain.MonthlyProjection, 0, horizonMonths)
	cumulative := decimal.Zero

	for month := 1; month <= horizonMonths; month++ {
		// 3. Revenue = price × the month's tiered quantity
		quantity := decimal.NewFromInt(int64(SalesQuantityForMonth(economics, month)))
		revenue := economics.ProductPrice.Mul(quantity)

		// 4. Profit/loss and running total
		profitLoss := revenue.Sub(fixed).Sub(variable)
		cumulative = cumulative.Add(profitLoss)

		rows = append(rows, domain.MonthlyProjection{
			MonthNumber:          month,
			Revenue:              revenue,
			FixedCosts:           fixed,
			VariableCosts:        variable,
			ProfitLoss:           profitLoss,
			CumulativeProfitLoss: cumulative,
		})
	}

	return rows, nil
}

// SalesQuantityForMonth returns the flat monthly volume in effect for a 1-based month.
func SalesQuantityForMonth(economics *domain.UnitEconomics, month int) int {
	switch tier := (month - 1) / monthsPerTier; {
	case tier <= 0:
		return economics.MonthlySalesQuantityYear1
	case tier == 1:
		return economics.MonthlySalesQuantityYear2
	default:
		return economics.MonthlySalesQuantityYear3
	}
}
