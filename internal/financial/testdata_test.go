package financial

import (
	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sampleInputs is the manufacturing-unit plan used across the tests:
// 500/unit, 2000/2500/3000 units a month, 115000 fixed, 300000 raw material.
func sampleInputs() domain.PlanInputs {
	return domain.PlanInputs{
		Investment: &domain.InvestmentProfile{
			TotalInvestmentAmount: dec("5000000"),
			LandCost:              dec("1000000"),
			BuildingCost:          dec("1500000"),
			MachineryCost:         dec("2000000"),
			WorkingCapital:        dec("300000"),
			OtherCosts:            dec("200000"),
			OwnContribution:       dec("1500000"),
			LoanRequired:          dec("3500000"),
		},
		Economics: &domain.UnitEconomics{
			ProductPrice:              dec("500"),
			MonthlySalesQuantityYear1: 2000,
			MonthlySalesQuantityYear2: 2500,
			MonthlySalesQuantityYear3: 3000,
			GrowthRatePercentage:      dec("25"),
		},
		Costs: &domain.MonthlyCostProfile{
			RawMaterialCostMonthly: dec("300000"),
			LaborCostMonthly:       dec("50000"),
			UtilitiesCostMonthly:   dec("15000"),
			RentMonthly:            dec("25000"),
			MarketingCostMonthly:   dec("20000"),
			OtherFixedCostsMonthly: dec("5000"),
		},
	}
}
