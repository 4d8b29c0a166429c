package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/andresuchdata/dpr-report/backend-go/internal/config"
	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/export"
	"github.com/andresuchdata/dpr-report/backend-go/internal/financial"
	"github.com/andresuchdata/dpr-report/backend-go/internal/pipeline"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/dpr-report/backend-go/internal/service"
	"github.com/andresuchdata/dpr-report/backend-go/internal/storage"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func runCalculate(c *cli.Context, cfg *config.Config) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	svc, err := newFinancialService(cfg, db)
	if err != nil {
		return err
	}

	result, err := svc.Calculate(c.Context, c.Int64("plan-id"))
	if err != nil {
		return fmt.Errorf("failed to calculate plan %d: %w", c.Int64("plan-id"), err)
	}

	fmt.Fprintf(c.App.Writer, "Plan %d: %d monthly projections stored\n", result.PlanID, result.ProjectionsCount)
	return renderSummary(c.App.Writer, result.Summary)
}

func runRecalculate(c *cli.Context, cfg *config.Config) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	status, err := parseStatusFlag(c.String("status"))
	if err != nil {
		return err
	}

	svc, err := newFinancialService(cfg, db)
	if err != nil {
		return err
	}

	recalcConfig := pipeline.DefaultRecalcConfig()
	recalcConfig.WorkerCount = c.Int("workers")
	recalcConfig.RetryAttempts = c.Int("attempts")

	recalculator := pipeline.NewRecalculator(svc, postgres.NewFinancialRepository(db), recalcConfig)
	report, err := recalculator.RunStatus(c.Context, status)
	if err != nil {
		return err
	}

	if err := renderBatch(c.App.Writer, report); err != nil {
		return err
	}

	if report.Completed() > 0 {
		if err := svc.InvalidateCache(c.Context); err != nil {
			log.Warn().Err(err).Str("run_id", report.RunID).Msg("financial cache flush failed")
		}
	}

	if failed := report.Failed(); failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d plans failed (run %s)", failed, len(report.Outcomes), report.RunID), 1)
	}
	return nil
}

func runProject(c *cli.Context) error {
	inputs, err := readInputs(c.Path("input"))
	if err != nil {
		return err
	}

	rows, summary, err := financial.Calculate(*inputs, c.Int("horizon"))
	if err != nil {
		return err
	}

	out := c.App.Writer
	switch strings.ToLower(c.String("output")) {
	case "csv":
		return export.WriteCSV(out, rows)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(domain.ProjectionReport{
			PlanID:      inputs.PlanID,
			TotalMonths: len(rows),
			Projections: rows,
			Summary:     &domain.SummaryReport{PlanID: inputs.PlanID, FinancialSummary: summary},
		})
	case "table":
		if err := renderProjection(out, rows); err != nil {
			return err
		}
		return renderSummary(out, summary)
	default:
		return fmt.Errorf("unsupported output %q", c.String("output"))
	}
}

func runArchive(c *cli.Context, cfg *config.Config) error {
	if !cfg.Storage.Enabled {
		return fmt.Errorf("object storage is disabled, set STORAGE_ENABLED=true")
	}

	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	svc, err := newFinancialService(cfg, db)
	if err != nil {
		return err
	}

	formats := make([]export.Format, 0)
	for _, value := range c.StringSlice("format") {
		format, err := export.ParseFormat(value)
		if err != nil {
			return err
		}
		formats = append(formats, format)
	}

	planID := c.Int64("plan-id")
	var (
		mu   sync.Mutex
		keys []string
	)
	g, ctx := errgroup.WithContext(c.Context)
	for _, format := range formats {
		format := format
		g.Go(func() error {
			key, err := svc.Archive(ctx, planID, format)
			if err != nil {
				return fmt.Errorf("archive %s: %w", format, err)
			}
			mu.Lock()
			keys = append(keys, key)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, key := range keys {
		fmt.Fprintf(c.App.Writer, "uploaded %s\n", key)
	}
	return nil
}

func runArchives(c *cli.Context, cfg *config.Config) error {
	if !cfg.Storage.Enabled {
		return fmt.Errorf("object storage is disabled, set STORAGE_ENABLED=true")
	}

	opts, err := archiveOptions(cfg)
	if err != nil {
		return err
	}
	svc := service.NewFinancialService(nil, nil, opts...)

	objects, err := svc.ListArchives(c.Context, c.Int64("plan-id"))
	if err != nil {
		return err
	}
	if err := renderArchives(c.App.Writer, objects); err != nil {
		return err
	}

	dir := c.Path("download-dir")
	if dir == "" || len(objects) == 0 {
		return nil
	}

	paths := make([]string, len(objects))
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(4)
	for i, object := range objects {
		i, key := i, object.Key
		g.Go(func() error {
			dest, err := svc.DownloadArchive(ctx, key, dir)
			if err != nil {
				return err
			}
			paths[i] = dest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Fprintf(c.App.Writer, "downloaded %s\n", p)
	}
	return nil
}

func statusFlagUsage() string {
	statuses := []domain.PlanStatus{domain.PlanStatusDraft, domain.PlanStatusInProgress, domain.PlanStatusCompleted}
	names := make([]string, 0, len(statuses)+1)
	for _, status := range statuses {
		names = append(names, fmt.Sprintf("%s (%s)", status, status.Label()))
	}
	names = append(names, "all")
	return "Plan status to cover: " + strings.Join(names, ", ")
}

func statusLabel(status domain.PlanStatus) string {
	if status == "" {
		return "All"
	}
	return status.Label()
}

func parseStatusFlag(value string) (domain.PlanStatus, error) {
	if strings.EqualFold(strings.TrimSpace(value), "all") {
		return "", nil
	}
	status, ok := domain.ParsePlanStatus(value)
	if !ok {
		return "", fmt.Errorf("unknown plan status %q", value)
	}
	return status, nil
}

func readInputs(path string) (*domain.PlanInputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var inputs domain.PlanInputs
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &inputs, nil
}

func renderProjection(w io.Writer, rows []domain.MonthlyProjection) error {
	table := tablewriter.NewWriter(w)
	table.Header("Month", "Revenue", "Fixed", "Variable", "Profit/Loss", "Cumulative")
	for _, row := range rows {
		if err := table.Append([]string{
			strconv.Itoa(row.MonthNumber),
			row.Revenue.StringFixed(2),
			row.FixedCosts.StringFixed(2),
			row.VariableCosts.StringFixed(2),
			row.ProfitLoss.StringFixed(2),
			row.CumulativeProfitLoss.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderSummary(w io.Writer, summary domain.FinancialSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"Break-even month", strconv.Itoa(summary.BreakevenMonths)},
		{"Payback month", strconv.Itoa(summary.PaybackPeriodMonths)},
		{"ROI %", summary.ROIPercentage.StringFixed(2)},
		{"NPV", summary.NPV.StringFixed(2)},
		{"Profit margin %", summary.ProfitMarginPercentage.StringFixed(2)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderBatch(w io.Writer, report *pipeline.BatchReport) error {
	fmt.Fprintf(w, "Run %s [%s plans]: %d completed, %d skipped, %d failed in %s\n",
		report.RunID, statusLabel(report.Status), report.Completed(), report.Skipped(), report.Failed(), report.Duration())

	table := tablewriter.NewWriter(w)
	table.Header("Plan", "Status", "Months", "Break-even", "Attempts", "Error")
	for _, o := range report.Outcomes {
		if err := table.Append([]string{
			strconv.FormatInt(o.PlanID, 10),
			string(o.Status),
			strconv.Itoa(o.ProjectionsCount),
			strconv.Itoa(o.BreakevenMonths),
			strconv.Itoa(o.Attempts),
			o.ErrorMessage,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderArchives(w io.Writer, objects []storage.ObjectInfo) error {
	if len(objects) == 0 {
		fmt.Fprintln(w, "no archived exports")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Key", "Size")
	for _, object := range objects {
		if err := table.Append([]string{object.Key, strconv.FormatInt(object.Size, 10)}); err != nil {
			return err
		}
	}
	return table.Render()
}
