package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/andresuchdata/dpr-report/backend-go/internal/cache"
	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/export"
	"github.com/andresuchdata/dpr-report/backend-go/internal/financial"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository"
	"github.com/andresuchdata/dpr-report/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

var ErrArchiveDisabled = errors.New("object storage is not configured")

type FinancialService struct {
	repo          repository.FinancialRepository
	cache         cache.FinancialCache
	archive       storage.ObjectStorage
	archivePrefix string
	now           func() time.Time
}

type Option func(*FinancialService)

// WithArchive uploads a CSV export of every fresh calculation under prefix.
func WithArchive(store storage.ObjectStorage, prefix string) Option {
	return func(s *FinancialService) {
		s.archive = store
		s.archivePrefix = prefix
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *FinancialService) {
		s.now = now
	}
}

func NewFinancialService(repo repository.FinancialRepository, cacheImpl cache.FinancialCache, opts ...Option) *FinancialService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopFinancialCache()
	}
	s := &FinancialService{
		repo:  repo,
		cache: cacheImpl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate recomputes the plan's projection and summary from its stored inputs
// and replaces any previous results.
func (s *FinancialService) Calculate(ctx context.Context, planID int64) (*domain.CalculationResult, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	inputs, err := s.repo.GetPlanInputs(ctx, planID)
	if err != nil {
		return nil, err
	}

	rows, summary, err := financial.Calculate(*inputs, financial.DefaultHorizonMonths)
	if err != nil {
		return nil, err
	}
	summary.CalculatedAt = s.now().UTC()

	if err := s.repo.ReplaceCalculation(ctx, planID, rows, summary); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidatePlan(ctx, planID); err != nil {
		log.Warn().Err(err).Int64("plan_id", planID).Msg("financial: cache invalidate failed")
	}

	if s.archive != nil {
		report := buildReport(plan, rows, &summary)
		if _, err := s.upload(ctx, report, export.FormatCSV, summary.CalculatedAt); err != nil {
			log.Warn().Err(err).Int64("plan_id", planID).Msg("financial: archive upload failed")
		}
	}

	log.Info().
		Int64("plan_id", planID).
		Int("months", len(rows)).
		Int("breakeven_months", summary.BreakevenMonths).
		Int("payback_period_months", summary.PaybackPeriodMonths).
		Str("roi_percentage", summary.ROIPercentage.String()).
		Msg("financial: projections calculated")

	return &domain.CalculationResult{
		PlanID:           planID,
		ProjectionsCount: len(rows),
		Summary:          summary,
		Projections:      rows,
	}, nil
}

func (s *FinancialService) GetProjections(ctx context.Context, planID int64) (*domain.ProjectionReport, error) {
	if report, ok, err := s.cache.GetReport(ctx, planID); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("financial: cache get report failed")
	}

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetProjections(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.ErrNoProjections
	}

	summary, err := s.repo.GetSummary(ctx, planID)
	if err != nil && !errors.Is(err, repository.ErrNoSummary) {
		return nil, err
	}

	report := buildReport(plan, rows, summary)

	if err := s.cache.SetReport(ctx, report); err != nil {
		log.Warn().Err(err).Msg("financial: cache set report failed")
	}

	return report, nil
}

func (s *FinancialService) GetSummary(ctx context.Context, planID int64) (*domain.SummaryReport, error) {
	if summary, ok, err := s.cache.GetSummary(ctx, planID); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("financial: cache get summary failed")
	}

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.GetSummary(ctx, planID)
	if err != nil {
		return nil, err
	}

	report := &domain.SummaryReport{
		PlanID:           plan.ID,
		BusinessName:     plan.BusinessName,
		FinancialSummary: *summary,
	}

	if err := s.cache.SetSummary(ctx, report); err != nil {
		log.Warn().Err(err).Msg("financial: cache set summary failed")
	}

	return report, nil
}

// Preview computes a projection for ad-hoc inputs without storing anything.
// A non-positive horizon falls back to the default.
func (s *FinancialService) Preview(ctx context.Context, inputs domain.PlanInputs, horizonMonths int) (*domain.ProjectionReport, error) {
	if horizonMonths <= 0 {
		horizonMonths = financial.DefaultHorizonMonths
	}

	rows, summary, err := financial.Calculate(inputs, horizonMonths)
	if err != nil {
		return nil, err
	}
	summary.CalculatedAt = s.now().UTC()

	return buildReport(&domain.Plan{ID: inputs.PlanID}, rows, &summary), nil
}

// Export renders the stored projection of a plan.
func (s *FinancialService) Export(ctx context.Context, planID int64, format export.Format) ([]byte, error) {
	report, err := s.GetProjections(ctx, planID)
	if err != nil {
		return nil, err
	}
	return export.Render(format, report)
}

// Archive uploads an export of the stored projection and returns its object key.
func (s *FinancialService) Archive(ctx context.Context, planID int64, format export.Format) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}

	report, err := s.GetProjections(ctx, planID)
	if err != nil {
		return "", err
	}

	at := s.now()
	if report.Summary != nil && !report.Summary.CalculatedAt.IsZero() {
		at = report.Summary.CalculatedAt
	}
	return s.upload(ctx, report, format, at)
}

// ListArchives returns the archived exports of a plan, oldest first.
func (s *FinancialService) ListArchives(ctx context.Context, planID int64) ([]storage.ObjectInfo, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}

	objects, err := s.archive.ListObjects(ctx, storage.ArchivePrefix(s.archivePrefix, planID))
	if err != nil {
		return nil, fmt.Errorf("failed to list archives of plan %d: %w", planID, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// DownloadArchive copies an archived export into dir and returns the local path.
func (s *FinancialService) DownloadArchive(ctx context.Context, key, dir string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}

	dest := filepath.Join(dir, path.Base(key))
	if err := s.archive.DownloadObject(ctx, key, dest); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", key, err)
	}
	return dest, nil
}

// InvalidateCache drops every cached report and summary.
func (s *FinancialService) InvalidateCache(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("failed to invalidate financial cache: %w", err)
	}
	return nil
}

func (s *FinancialService) upload(ctx context.Context, report *domain.ProjectionReport, format export.Format, at time.Time) (string, error) {
	data, err := export.Render(format, report)
	if err != nil {
		return "", err
	}

	key := storage.ArchiveKey(s.archivePrefix, report.PlanID, at, format.Extension())
	if err := s.archive.UploadObject(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to archive plan %d: %w", report.PlanID, err)
	}
	return key, nil
}

func buildReport(plan *domain.Plan, rows []domain.MonthlyProjection, summary *domain.FinancialSummary) *domain.ProjectionReport {
	report := &domain.ProjectionReport{
		PlanID:       plan.ID,
		BusinessName: plan.BusinessName,
		TotalMonths:  len(rows),
		Projections:  rows,
	}
	if summary != nil {
		report.Summary = &domain.SummaryReport{
			PlanID:           plan.ID,
			BusinessName:     plan.BusinessName,
			FinancialSummary: *summary,
		}
	}
	return report
}
