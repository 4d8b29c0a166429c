package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/export"
	"github.com/andresuchdata/dpr-report/backend-go/internal/financial"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository"
	"github.com/andresuchdata/dpr-report/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinancialService struct {
	err           error
	previewInputs domain.PlanInputs
	previewMonths int
	exportFormat  export.Format
}

func (f *fakeFinancialService) Calculate(ctx context.Context, planID int64) (*domain.CalculationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CalculationResult{
		PlanID:           planID,
		ProjectionsCount: 36,
		Summary: domain.FinancialSummary{
			BreakevenMonths:     1,
			PaybackPeriodMonths: 9,
			ROIPercentage:       decimal.RequireFromString("601.2"),
		},
	}, nil
}

func (f *fakeFinancialService) GetProjections(ctx context.Context, planID int64) (*domain.ProjectionReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProjectionReport{
		PlanID:       planID,
		BusinessName: "Kopi Nusantara",
		TotalMonths:  1,
		Projections:  []domain.MonthlyProjection{{MonthNumber: 1, Revenue: decimal.NewFromInt(1000000)}},
	}, nil
}

func (f *fakeFinancialService) GetSummary(ctx context.Context, planID int64) (*domain.SummaryReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SummaryReport{PlanID: planID, BusinessName: "Kopi Nusantara"}, nil
}

func (f *fakeFinancialService) Preview(ctx context.Context, inputs domain.PlanInputs, horizonMonths int) (*domain.ProjectionReport, error) {
	f.previewInputs = inputs
	f.previewMonths = horizonMonths
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProjectionReport{TotalMonths: horizonMonths}, nil
}

func (f *fakeFinancialService) Export(ctx context.Context, planID int64, format export.Format) ([]byte, error) {
	f.exportFormat = format
	if f.err != nil {
		return nil, f.err
	}
	return []byte("month_number\n1\n"), nil
}

func newTestRouter(svc FinancialService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFinancialHandler(svc)
	r := gin.New()
	r.POST("/financial/preview", h.Preview)
	r.POST("/financial/:plan_id/calculate", h.Calculate)
	r.GET("/financial/:plan_id/projections", h.GetProjections)
	r.GET("/financial/:plan_id/summary", h.GetSummary)
	r.GET("/financial/:plan_id/export", h.Export)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCalculate_Created(t *testing.T) {
	w := serve(newTestRouter(&fakeFinancialService{}), http.MethodPost, "/financial/7/calculate", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["plan_id"])
	assert.Equal(t, float64(36), body["projections_count"])

	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(9), summary["payback_period_months"])
	assert.Equal(t, "601.2", summary["roi_percentage"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plan not found", repository.ErrPlanNotFound, http.StatusNotFound},
		{"no projections", repository.ErrNoProjections, http.StatusNotFound},
		{"no summary", repository.ErrNoSummary, http.StatusNotFound},
		{"missing input", &financial.MissingInputError{Group: "unit economics"}, http.StatusBadRequest},
		{"invalid value", &financial.InvalidValueError{Field: "investment profile.total_investment_amount", Value: "0", Reason: "must be greater than 0"}, http.StatusUnprocessableEntity},
		{"malformed", &financial.MalformedProjectionError{Month: 2, Reason: "gap"}, http.StatusInternalServerError},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newTestRouter(&fakeFinancialService{err: tt.err}), http.MethodPost, "/financial/1/calculate", "")
			assert.Equal(t, tt.want, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "failed to calculate projections", body["error"])
			assert.Equal(t, tt.err.Error(), body["details"])
		})
	}
}

func TestInvalidPlanID(t *testing.T) {
	r := newTestRouter(&fakeFinancialService{})
	for _, target := range []string{"/financial/abc/projections", "/financial/0/summary", "/financial/-4/export"} {
		w := serve(r, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestGetProjections(t *testing.T) {
	w := serve(newTestRouter(&fakeFinancialService{}), http.MethodGet, "/financial/3/projections", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.ProjectionReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, int64(3), report.PlanID)
	assert.Equal(t, 1, report.TotalMonths)
	assert.True(t, report.Projections[0].Revenue.Equal(decimal.NewFromInt(1000000)))
}

func TestGetSummary(t *testing.T) {
	w := serve(newTestRouter(&fakeFinancialService{}), http.MethodGet, "/financial/3/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"business_name":"Kopi Nusantara"`)

	w = serve(newTestRouter(&fakeFinancialService{err: repository.ErrNoSummary}), http.MethodGet, "/financial/3/summary", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport(t *testing.T) {
	svc := &fakeFinancialService{}
	r := newTestRouter(svc)

	w := serve(r, http.MethodGet, "/financial/3/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatCSV, svc.exportFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=financial_projection_3.csv", w.Header().Get("Content-Disposition"))

	w = serve(r, http.MethodGet, "/financial/3/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatXLSX, svc.exportFormat)

	w = serve(r, http.MethodGet, "/financial/3/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreview(t *testing.T) {
	svc := &fakeFinancialService{}
	body := `{
		"investment": {"total_investment_amount": 5000000},
		"economics": {"product_price": "500", "monthly_sales_quantity_year1": 2000},
		"costs": {"rent_monthly": 25000},
		"horizon_months": 12
	}`

	w := serve(newTestRouter(svc), http.MethodPost, "/financial/preview", body)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 12, svc.previewMonths)
	require.NotNil(t, svc.previewInputs.Investment)
	assert.True(t, svc.previewInputs.Investment.TotalInvestmentAmount.Equal(decimal.NewFromInt(5000000)))
	assert.True(t, svc.previewInputs.Economics.ProductPrice.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 2000, svc.previewInputs.Economics.MonthlySalesQuantityYear1)
}

func TestPreview_BadRequests(t *testing.T) {
	r := newTestRouter(&fakeFinancialService{})

	w := serve(r, http.MethodPost, "/financial/preview", `{"investment":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/financial/preview", `{"horizon_months": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(newTestRouter(&fakeFinancialService{err: &financial.MissingInputError{Group: "investment profile"}}),
		http.MethodPost, "/financial/preview", `{"horizon_months": 6}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreview_HorizonAboveCap(t *testing.T) {
	r := newTestRouter(service.NewFinancialService(nil, nil))
	body := `{
		"investment": {"total_investment_amount": 5000000},
		"economics": {"product_price": "500", "monthly_sales_quantity_year1": 2000},
		"costs": {"rent_monthly": 25000},
		"horizon_months": 2000000000
	}`

	w := serve(r, http.MethodPost, "/financial/preview", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "horizon_months")

	body = strings.Replace(body, "2000000000", "120", 1)
	w = serve(r, http.MethodPost, "/financial/preview", body)
	assert.Equal(t, http.StatusOK, w.Code)
}
