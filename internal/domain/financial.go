package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentProfile is the capital side of a plan. Only TotalInvestmentAmount feeds
// the calculators; the breakdown is carried for reporting.
type InvestmentProfile struct {
	TotalInvestmentAmount decimal.Decimal `json:"total_investment_amount" db:"total_investment_amount" validate:"dec_gt=0"`
	LandCost              decimal.Decimal `json:"land_cost" db:"land_cost" validate:"dec_gte=0"`
	BuildingCost          decimal.Decimal `json:"building_cost" db:"building_cost" validate:"dec_gte=0"`
	MachineryCost         decimal.Decimal `json:"machinery_cost" db:"machinery_cost" validate:"dec_gte=0"`
	WorkingCapital        decimal.Decimal `json:"working_capital" db:"working_capital" validate:"dec_gte=0"`
	OtherCosts            decimal.Decimal `json:"other_costs" db:"other_costs" validate:"dec_gte=0"`
	OwnContribution       decimal.Decimal `json:"own_contribution" db:"own_contribution" validate:"dec_gte=0"`
	LoanRequired          decimal.Decimal `json:"loan_required" db:"loan_required" validate:"dec_gte=0"`
}

// UnitEconomics holds pricing and the flat monthly volume for each year of the horizon.
// GrowthRatePercentage is collected from the form but is not applied to volumes.
type UnitEconomics struct {
	ProductPrice              decimal.Decimal `json:"product_price" db:"product_price" validate:"dec_gte=0"`
	MonthlySalesQuantityYear1 int             `json:"monthly_sales_quantity_year1" db:"monthly_sales_quantity_year1" validate:"gte=0"`
	MonthlySalesQuantityYear2 int             `json:"monthly_sales_quantity_year2" db:"monthly_sales_quantity_year2" validate:"gte=0"`
	MonthlySalesQuantityYear3 int             `json:"monthly_sales_quantity_year3" db:"monthly_sales_quantity_year3" validate:"gte=0"`
	GrowthRatePercentage      decimal.Decimal `json:"growth_rate_percentage" db:"growth_rate_percentage" validate:"dec_gte=0,dec_lte=100"`
}

// MonthlyCostProfile holds the recurring monthly costs of a plan.
type MonthlyCostProfile struct {
	RawMaterialCostMonthly decimal.Decimal `json:"raw_material_cost_monthly" db:"raw_material_cost_monthly" validate:"dec_gte=0"`
	LaborCostMonthly       decimal.Decimal `json:"labor_cost_monthly" db:"labor_cost_monthly" validate:"dec_gte=0"`
	UtilitiesCostMonthly   decimal.Decimal `json:"utilities_cost_monthly" db:"utilities_cost_monthly" validate:"dec_gte=0"`
	RentMonthly            decimal.Decimal `json:"rent_monthly" db:"rent_monthly" validate:"dec_gte=0"`
	MarketingCostMonthly   decimal.Decimal `json:"marketing_cost_monthly" db:"marketing_cost_monthly" validate:"dec_gte=0"`
	OtherFixedCostsMonthly decimal.Decimal `json:"other_fixed_costs_monthly" db:"other_fixed_costs_monthly" validate:"dec_gte=0"`
}

// FixedMonthly is the sum of every fixed cost field.
func (c MonthlyCostProfile) FixedMonthly() decimal.Decimal {
	return c.LaborCostMonthly.
		Add(c.UtilitiesCostMonthly).
		Add(c.RentMonthly).
		Add(c.MarketingCostMonthly).
		Add(c.OtherFixedCostsMonthly)
}

// PlanInputs is the snapshot of the three input groups for one plan.
// A nil group means the form section has not been filled in.
type PlanInputs struct {
	PlanID     int64               `json:"plan_id,omitempty"`
	Investment *InvestmentProfile  `json:"investment"`
	Economics  *UnitEconomics      `json:"economics"`
	Costs      *MonthlyCostProfile `json:"costs"`
}

// MonthlyProjection is one row of the projection series.
type MonthlyProjection struct {
	MonthNumber          int             `json:"month_number" db:"month_number"`
	Revenue              decimal.Decimal `json:"revenue" db:"revenue"`
	FixedCosts           decimal.Decimal `json:"fixed_costs" db:"fixed_costs"`
	VariableCosts        decimal.Decimal `json:"variable_costs" db:"variable_costs"`
	ProfitLoss           decimal.Decimal `json:"profit_loss" db:"profit_loss"`
	CumulativeProfitLoss decimal.Decimal `json:"cumulative_profit_loss" db:"cumulative_profit_loss"`
}

// FinancialSummary holds the investment metrics derived from a projection series.
type FinancialSummary struct {
	BreakevenMonths        int             `json:"breakeven_months" db:"breakeven_months"`
	ROIPercentage          decimal.Decimal `json:"roi_percentage" db:"roi_percentage"`
	PaybackPeriodMonths    int             `json:"payback_period_months" db:"payback_period_months"`
	NPV                    decimal.Decimal `json:"npv" db:"npv"`
	ProfitMarginPercentage decimal.Decimal `json:"profit_margin_percentage" db:"profit_margin_percentage"`
	CalculatedAt           time.Time       `json:"calculated_at" db:"calculated_at"`
}

// Plan is a business-plan submission that owns one set of inputs and results.
type Plan struct {
	ID           int64      `json:"id" db:"id"`
	BusinessName string     `json:"business_name" db:"business_name"`
	Status       PlanStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// CalculationResult is returned after a fresh calculation has been stored.
type CalculationResult struct {
	PlanID           int64               `json:"plan_id"`
	ProjectionsCount int                 `json:"projections_count"`
	Summary          FinancialSummary    `json:"summary"`
	Projections      []MonthlyProjection `json:"-"`
}

// SummaryReport is a stored summary together with the plan it belongs to.
type SummaryReport struct {
	PlanID       int64  `json:"plan_id"`
	BusinessName string `json:"business_name"`
	FinancialSummary
}

// ProjectionReport is a stored projection series with its summary, if any.
type ProjectionReport struct {
	PlanID       int64               `json:"plan_id"`
	BusinessName string              `json:"business_name"`
	TotalMonths  int                 `json:"total_months"`
	Projections  []MonthlyProjection `json:"projections"`
	Summary      *SummaryReport      `json:"summary"`
}
