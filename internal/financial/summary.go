package financial

import (
	"strconv"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// monthlyDiscountRate is the NPV discount rate, 10% a year spread over 12 months.
var monthlyDiscountRate = decimal.RequireFromString("0.0083")

// ComputeSummary derives the investment metrics from a projection series.
//
// Break-even and payback fall back to the last month number when the threshold
// is never reached, so a crossing in the final month looks the same as no
// crossing; check the sign of the final cumulative value to tell them apart.
// CalculatedAt is left zero for the caller to stamp.
func ComputeSummary(rows []domain.MonthlyProjection, totalInvestment decimal.Decimal) (domain.FinancialSummary, error) {
	if !totalInvestment.IsPositive() {
		return domain.FinancialSummary{}, &InvalidValueError{
			Field:  "total_investment_amount",
			Value:  totalInvestment.String(),
			Reason: "must be greater than 0",
		}
	}
	if err := CheckProjection(rows); err != nil {
		return domain.FinancialSummary{}, err
	}

	final := rows[len(rows)-1].CumulativeProfitLoss

	return domain.FinancialSummary{
		BreakevenMonths: firstMonth(rows, func(r domain.MonthlyProjection) bool {
			return r.CumulativeProfitLoss.IsPositive()
		}),
		ROIPercentage: roundMetric(percentOf(final, totalInvestment)),
		PaybackPeriodMonths: firstMonth(rows, func(r domain.MonthlyProjection) bool {
			return r.CumulativeProfitLoss.GreaterThanOrEqual(totalInvestment)
		}),
		NPV:                    roundMetric(netPresentValue(rows, totalInvestment)),
		ProfitMarginPercentage: roundMetric(profitMargin(rows)),
	}, nil
}

// CheckProjection verifies months run 1..N without gaps and that every
// cumulative value is the previous one plus the month's profit/loss.
func CheckProjection(rows []domain.MonthlyProjection) error {
	if len(rows) == 0 {
		return &MalformedProjectionError{Reason: "projection is empty"}
	}

	previous := decimal.Zero
	for i, row := range rows {
		if row.MonthNumber != i+1 {
			return &MalformedProjectionError{Month: row.MonthNumber, Reason: "expected month " + strconv.Itoa(i+1)}
		}
		if !row.CumulativeProfitLoss.Equal(previous.Add(row.ProfitLoss)) {
			return &MalformedProjectionError{Month: row.MonthNumber, Reason: "cumulative profit/loss does not match running total"}
		}
		previous = row.CumulativeProfitLoss
	}

	return nil
}

// firstMonth returns the first month satisfying match, or the last month number.
func firstMonth(rows []domain.MonthlyProjection, match func(domain.MonthlyProjection) bool) int {
	for _, row := range rows {
		if match(row) {
			return row.MonthNumber
		}
	}
	return rows[len(rows)-1].MonthNumber
}

// netPresentValue discounts each month's profit/loss by (1+r)^month and subtracts
// the initial investment.
func netPresentValue(rows []domain.MonthlyProjection, totalInvestment decimal.Decimal) decimal.Decimal {
	growth := decimal.NewFromInt(1).Add(monthlyDiscountRate)
	factor := decimal.NewFromInt(1)
	npv := decimal.Zero

	for _, row := range rows {
		// months are contiguous from 1, so factor is (1+r)^MonthNumber here
		factor = factor.Mul(growth)
		npv = npv.Add(row.ProfitLoss.Div(factor))
	}

	return npv.Sub(totalInvestment)
}

// profitMargin is total profit over revenue from months with positive revenue.
func profitMargin(rows []domain.MonthlyProjection) decimal.Decimal {
	totalProfit := decimal.Zero
	totalRevenue := decimal.Zero

	for _, row := range rows {
		totalProfit = totalProfit.Add(row.ProfitLoss)
		if row.Revenue.IsPositive() {
			totalRevenue = totalRevenue.Add(row.Revenue)
		}
	}

	if totalRevenue.IsZero() {
		return decimal.Zero
	}
	return percentOf(totalProfit, totalRevenue)
}
