package financial

import "github.com/andresuchdata/dpr-report/backend-go/internal/domain"

// Calculate runs ComputeProjection and ComputeSummary over one plan's inputs.
func Calculate(inputs domain.PlanInputs, horizonMonths int) ([]domain.MonthlyProjection, domain.FinancialSummary, error) {
	rows, err := ComputeProjection(inputs.Investment, inputs.Economics, inputs.Costs, horizonMonths)
	if err != nil {
		return nil, domain.FinancialSummary{}, err
	}

	summary, err := ComputeSummary(rows, inputs.Investment.TotalInvestmentAmount)
	if err != nil {
		return nil, domain.FinancialSummary{}, err
	}

	return rows, summary, nil
}
