package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository"
	"github.com/andresuchdata/dpr-report/backend-go/internal/storage"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleInputs(planID int64) *domain.PlanInputs {
	return &domain.PlanInputs{
		PlanID:     planID,
		Investment: &domain.InvestmentProfile{TotalInvestmentAmount: dec("5000000")},
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

type fakeRepo struct {
	mu          sync.Mutex
	plans       map[int64]*domain.Plan
	inputs      map[int64]*domain.PlanInputs
	projections map[int64][]domain.MonthlyProjection
	summaries   map[int64]domain.FinancialSummary
	replaceErr  error
	replaced    int
	reads       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		plans:       make(map[int64]*domain.Plan),
		inputs:      make(map[int64]*domain.PlanInputs),
		projections: make(map[int64][]domain.MonthlyProjection),
		summaries:   make(map[int64]domain.FinancialSummary),
	}
}

func (r *fakeRepo) addPlan(id int64, name string, inputs *domain.PlanInputs) {
	r.plans[id] = &domain.Plan{ID: id, BusinessName: name, Status: domain.PlanStatusCompleted}
	if inputs == nil {
		inputs = &domain.PlanInputs{PlanID: id}
	}
	r.inputs[id] = inputs
}

func (r *fakeRepo) GetPlan(ctx context.Context, planID int64) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	plan, ok := r.plans[planID]
	if !ok {
		return nil, repository.ErrPlanNotFound
	}
	return plan, nil
}

func (r *fakeRepo) GetPlanInputs(ctx context.Context, planID int64) (*domain.PlanInputs, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inputs, ok := r.inputs[planID]
	if !ok {
		return nil, repository.ErrPlanNotFound
	}
	return inputs, nil
}

func (r *fakeRepo) ListPlanIDs(ctx context.Context, status domain.PlanStatus) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.plans))
	for id, plan := range r.plans {
		if status == "" || plan.Status == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeRepo) ReplaceCalculation(ctx context.Context, planID int64, rows []domain.MonthlyProjection, summary domain.FinancialSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.replaced++
	r.projections[planID] = rows
	r.summaries[planID] = summary
	return nil
}

func (r *fakeRepo) GetProjections(ctx context.Context, planID int64) ([]domain.MonthlyProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projections[planID], nil
}

func (r *fakeRepo) GetSummary(ctx context.Context, planID int64) (*domain.FinancialSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary, ok := r.summaries[planID]
	if !ok {
		return nil, repository.ErrNoSummary
	}
	return &summary, nil
}

type fakeCache struct {
	reports     map[int64]*domain.ProjectionReport
	summaries   map[int64]*domain.SummaryReport
	invalidated []int64
	flushes     int
	failGet     bool
	failFlush   bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		reports:   make(map[int64]*domain.ProjectionReport),
		summaries: make(map[int64]*domain.SummaryReport),
	}
}

func (c *fakeCache) GetReport(ctx context.Context, planID int64) (*domain.ProjectionReport, bool, error) {
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	report, ok := c.reports[planID]
	return report, ok, nil
}

func (c *fakeCache) SetReport(ctx context.Context, report *domain.ProjectionReport) error {
	c.reports[report.PlanID] = report
	return nil
}

func (c *fakeCache) GetSummary(ctx context.Context, planID int64) (*domain.SummaryReport, bool, error) {
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	summary, ok := c.summaries[planID]
	return summary, ok, nil
}

func (c *fakeCache) SetSummary(ctx context.Context, summary *domain.SummaryReport) error {
	c.summaries[summary.PlanID] = summary
	return nil
}

func (c *fakeCache) InvalidatePlan(ctx context.Context, planID int64) error {
	delete(c.reports, planID)
	delete(c.summaries, planID)
	c.invalidated = append(c.invalidated, planID)
	return nil
}

func (c *fakeCache) InvalidateAll(ctx context.Context) error {
	if c.failFlush {
		return errors.New("cache down")
	}
	c.flushes++
	c.reports = make(map[int64]*domain.ProjectionReport)
	c.summaries = make(map[int64]*domain.SummaryReport)
	return nil
}

type fakeStorage struct {
	objects   map[string][]byte
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (s *fakeStorage) DownloadObject(ctx context.Context, key string, destPath string) error {
	data, ok := s.objects[key]
	if !ok {
		return errors.New("object not found")
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (s *fakeStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.objects[key] = data
	return nil
}
