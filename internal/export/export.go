// Package export renders stored projection reports as CSV or XLSX documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	projectionSheet = "Projection"
	summarySheet    = "Summary"
)

var projectionHeader = []string{
	"month_number",
	"revenue",
	"fixed_costs",
	"variable_costs",
	"profit_loss",
	"cumulative_profit_loss",
}

// Write renders report in the requested format.
func Write(w io.Writer, format Format, report *domain.ProjectionReport) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, report.Projections)
	case FormatXLSX:
		return WriteXLSX(w, report)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Render is Write into a byte slice.
func Render(format Format, report *domain.ProjectionReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes one header line and one line per month. Money columns use two decimals.
func WriteCSV(w io.Writer, rows []domain.MonthlyProjection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(projectionHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.MonthNumber),
			money(row.Revenue),
			money(row.FixedCosts),
			money(row.VariableCosts),
			money(row.ProfitLoss),
			money(row.CumulativeProfitLoss),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for month %d: %w", row.MonthNumber, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with the projection series on one sheet and the summary on another.
func WriteXLSX(w io.Writer, report *domain.ProjectionReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", projectionSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(projectionSheet, "A1", &projectionHeader); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}

	for i, row := range report.Projections {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.MonthNumber,
			row.Revenue.InexactFloat64(),
			row.FixedCosts.InexactFloat64(),
			row.VariableCosts.InexactFloat64(),
			row.ProfitLoss.InexactFloat64(),
			row.CumulativeProfitLoss.InexactFloat64(),
		}
		if err := f.SetSheetRow(projectionSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write xlsx row for month %d: %w", row.MonthNumber, err)
		}
	}

	if report.Summary != nil {
		if err := writeSummarySheet(f, report); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *domain.ProjectionReport) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	s := report.Summary
	rows := [][]interface{}{
		{"metric", "value"},
		{"plan_id", report.PlanID},
		{"business_name", report.BusinessName},
		{"breakeven_months", s.BreakevenMonths},
		{"roi_percentage", s.ROIPercentage.InexactFloat64()},
		{"payback_period_months", s.PaybackPeriodMonths},
		{"npv", s.NPV.InexactFloat64()},
		{"profit_margin_percentage", s.ProfitMarginPercentage.InexactFloat64()},
	}
	for i := range rows {
		if err := f.SetSheetRow(summarySheet, "A"+strconv.Itoa(i+1), &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}
