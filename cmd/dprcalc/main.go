package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/dpr-report/backend-go/internal/cache"
	"github.com/andresuchdata/dpr-report/backend-go/internal/config"
	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/financial"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/dpr-report/backend-go/internal/service"
	"github.com/andresuchdata/dpr-report/backend-go/internal/storage"
	"github.com/andresuchdata/dpr-report/backend-go/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		Value:   cfg.Database.URLString(),
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newPlanIDFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:     "plan-id",
		Usage:    "Plan to operate on",
		Required: true,
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.Open(postgres.DriverPGX, c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

// newFinancialService wires the service the same way cmd/server does.
func newFinancialService(cfg *config.Config, db *postgres.DB) (*service.FinancialService, error) {
	financialCache, err := cache.NewFinancialCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("financial cache unavailable, continuing without cache")
		financialCache = cache.NewNoopFinancialCache()
	}

	opts, err := archiveOptions(cfg)
	if err != nil {
		return nil, err
	}

	return service.NewFinancialService(postgres.NewFinancialRepository(db), financialCache, opts...), nil
}

func archiveOptions(cfg *config.Config) ([]service.Option, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	store, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	return []service.Option{service.WithArchive(store, cfg.Storage.Prefix)}, nil
}

func main() {
	cfg := config.Load()

	app := &cli.App{
		Name:  "dprcalc",
		Usage: "Calculate and manage DPR financial projections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   cfg.Server.LogLevel,
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			// stdout is reserved for command output
			logger.ConfigureOutput(logger.Console(os.Stderr), c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "calculate",
				Usage: "Calculate and store the projection of one plan",
				Flags: []cli.Flag{
					newDBURLFlag(cfg),
					newPlanIDFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return runCalculate(c, cfg)
				},
			},
			{
				Name:  "recalculate",
				Usage: "Recalculate every plan with a given status",
				Flags: []cli.Flag{
					newDBURLFlag(cfg),
					&cli.StringFlag{
						Name:  "status",
						Usage: statusFlagUsage(),
						Value: string(domain.PlanStatusCompleted),
					},
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Number of concurrent workers",
						Value:   cfg.Batch.WorkerCount,
						EnvVars: []string{"BATCH_WORKER_COUNT"},
					},
					&cli.IntFlag{
						Name:  "attempts",
						Usage: "Attempts per plan for transient failures",
						Value: 2,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return runRecalculate(c, cfg)
				},
			},
			{
				Name:  "project",
				Usage: "Compute a projection from a JSON inputs file without touching the database",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "JSON file with investment, economics and costs",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "horizon",
						Usage: "Number of months to project",
						Value: financial.DefaultHorizonMonths,
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output format (table, csv, json)",
						Value: "table",
					},
				},
				Action: runProject,
			},
			{
				Name:  "archive",
				Usage: "Export a stored projection and upload it to object storage",
				Flags: []cli.Flag{
					newDBURLFlag(cfg),
					newPlanIDFlag(),
					&cli.StringSliceFlag{
						Name:  "format",
						Usage: "Export formats to upload (csv, xlsx)",
						Value: cli.NewStringSlice("csv", "xlsx"),
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return runArchive(c, cfg)
				},
			},
			{
				Name:  "archives",
				Usage: "List the archived exports of a plan, optionally downloading them",
				Flags: []cli.Flag{
					newPlanIDFlag(),
					&cli.PathFlag{
						Name:  "download-dir",
						Usage: "Directory to download every listed export into",
					},
				},
				Action: func(c *cli.Context) error {
					return runArchives(c, cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("dprcalc failed")
	}
}
