package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/financial"
	"github.com/andresuchdata/dpr-report/backend-go/internal/pipeline"
	"github.com/andresuchdata/dpr-report/backend-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const planJSON = `{
	"plan_id": 3,
	"investment": {"total_investment_amount": "5000000"},
	"economics": {
		"product_price": "500",
		"monthly_sales_quantity_year1": 2000,
		"monthly_sales_quantity_year2": 2500,
		"monthly_sales_quantity_year3": 3000,
		"growth_rate_percentage": "25"
	},
	"costs": {
		"raw_material_cost_monthly": "300000",
		"labor_cost_monthly": "50000",
		"utilities_cost_monthly": "15000",
		"rent_monthly": "25000",
		"marketing_cost_monthly": "20000",
		"other_fixed_costs_monthly": "5000"
	}
}`

func projectApp(out *bytes.Buffer) *cli.App {
	return &cli.App{
		Writer: out,
		Commands: []*cli.Command{
			{
				Name: "project",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: "input", Required: true},
					&cli.IntFlag{Name: "horizon", Value: 36},
					&cli.StringFlag{Name: "output", Value: "table"},
				},
				Action: runProject,
			},
		},
	}
}

func writePlan(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestProject_CSV(t *testing.T) {
	var out bytes.Buffer
	path := writePlan(t, planJSON)

	err := projectApp(&out).Run([]string{"dprcalc", "project", "--input", path, "--horizon", "3", "--output", "csv"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "3,1000000.00,115000.00,300000.00,585000.00,1755000.00", lines[3])
}

func TestProject_JSON(t *testing.T) {
	var out bytes.Buffer
	path := writePlan(t, planJSON)

	err := projectApp(&out).Run([]string{"dprcalc", "project", "--input", path, "--output", "json"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"total_months": 36`)
	assert.Contains(t, out.String(), `"npv": "20380958.12"`)
}

func TestProject_Table(t *testing.T) {
	var out bytes.Buffer
	path := writePlan(t, planJSON)

	err := projectApp(&out).Run([]string{"dprcalc", "project", "--input", path, "--horizon", "12"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "585000.00")
	assert.Contains(t, out.String(), "601.20")
}

func TestProject_MissingGroup(t *testing.T) {
	var out bytes.Buffer
	path := writePlan(t, `{"investment": {"total_investment_amount": 100}}`)

	err := projectApp(&out).Run([]string{"dprcalc", "project", "--input", path})
	assert.ErrorIs(t, err, financial.ErrMissingInput)
}

func TestProject_HorizonAboveCap(t *testing.T) {
	var out bytes.Buffer
	path := writePlan(t, planJSON)

	err := projectApp(&out).Run([]string{"dprcalc", "project", "--input", path, "--horizon", "2000000000"})
	assert.ErrorIs(t, err, financial.ErrInvalidValue)
	assert.Empty(t, out.String())
}

func TestRenderBatch_ShowsStatusLabel(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	report := &pipeline.BatchReport{
		RunID:       "run-1",
		Status:      domain.PlanStatusInProgress,
		StartedAt:   started,
		CompletedAt: started.Add(2 * time.Second),
		Outcomes: []pipeline.PlanOutcome{
			{PlanID: 4, Status: pipeline.JobStatusCompleted, ProjectionsCount: 36, BreakevenMonths: 1, Attempts: 1},
		},
	}

	var out bytes.Buffer
	require.NoError(t, renderBatch(&out, report))
	assert.Contains(t, out.String(), "Run run-1 [In Progress plans]: 1 completed, 0 skipped, 0 failed in 2s")

	out.Reset()
	report.Status = ""
	require.NoError(t, renderBatch(&out, report))
	assert.Contains(t, out.String(), "[All plans]")
}

func TestStatusFlagUsage(t *testing.T) {
	usage := statusFlagUsage()
	assert.Contains(t, usage, "in_progress (In Progress)")
	assert.Contains(t, usage, "completed (Completed)")
	assert.True(t, strings.HasSuffix(usage, "all"))
}

func TestRenderArchives(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderArchives(&out, nil))
	assert.Equal(t, "no archived exports\n", out.String())

	out.Reset()
	require.NoError(t, renderArchives(&out, []storage.ObjectInfo{
		{Key: "financial/3/20260301T093000Z.csv", Size: 2048},
	}))
	assert.Contains(t, out.String(), "financial/3/20260301T093000Z.csv")
	assert.Contains(t, out.String(), "2048")
}

func TestParseStatusFlag(t *testing.T) {
	status, err := parseStatusFlag("all")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatus(""), status)

	status, err = parseStatusFlag("In Progress")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusInProgress, status)

	_, err = parseStatusFlag("archived")
	assert.Error(t, err)
}
