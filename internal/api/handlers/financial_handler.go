package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/andresuchdata/dpr-report/backend-go/internal/export"
	"github.com/andresuchdata/dpr-report/backend-go/internal/financial"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// FinancialService is what the financial routes need from the service layer.
type FinancialService interface {
	Calculate(ctx context.Context, planID int64) (*domain.CalculationResult, error)
	GetProjections(ctx context.Context, planID int64) (*domain.ProjectionReport, error)
	GetSummary(ctx context.Context, planID int64) (*domain.SummaryReport, error)
	Preview(ctx context.Context, inputs domain.PlanInputs, horizonMonths int) (*domain.ProjectionReport, error)
	Export(ctx context.Context, planID int64, format export.Format) ([]byte, error)
}

type FinancialHandler struct {
	service FinancialService
}

func NewFinancialHandler(service FinancialService) *FinancialHandler {
	return &FinancialHandler{service: service}
}

type previewRequest struct {
	Investment    *domain.InvestmentProfile  `json:"investment"`
	Economics     *domain.UnitEconomics      `json:"economics"`
	Costs         *domain.MonthlyCostProfile `json:"costs"`
	HorizonMonths int                        `json:"horizon_months"`
}

func (h *FinancialHandler) Calculate(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	result, err := h.service.Calculate(c.Request.Context(), planID)
	if err != nil {
		respondError(c, "failed to calculate projections", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":           true,
		"message":           "Financial projections calculated successfully",
		"plan_id":           result.PlanID,
		"projections_count": result.ProjectionsCount,
		"summary":           result.Summary,
	})
}

func (h *FinancialHandler) GetProjections(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	report, err := h.service.GetProjections(c.Request.Context(), planID)
	if err != nil {
		respondError(c, "failed to fetch projections", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *FinancialHandler) GetSummary(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), planID)
	if err != nil {
		respondError(c, "failed to fetch summary", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *FinancialHandler) Export(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid export format", "details": err.Error()})
		return
	}

	data, err := h.service.Export(c.Request.Context(), planID, format)
	if err != nil {
		respondError(c, "failed to export projections", err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+format.FileName(planID))
	c.Data(http.StatusOK, format.ContentType(), data)
}

// Preview computes a projection from the posted inputs without storing it.
func (h *FinancialHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.HorizonMonths < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon_months must be positive"})
		return
	}

	inputs := domain.PlanInputs{
		Investment: req.Investment,
		Economics:  req.Economics,
		Costs:      req.Costs,
	}

	report, err := h.service.Preview(c.Request.Context(), inputs, req.HorizonMonths)
	if err != nil {
		respondError(c, "failed to preview projections", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func parsePlanID(c *gin.Context) (int64, bool) {
	planID, err := strconv.ParseInt(c.Param("plan_id"), 10, 64)
	if err != nil || planID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return 0, false
	}
	return planID, true
}

func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrPlanNotFound),
		errors.Is(err, repository.ErrNoProjections),
		errors.Is(err, repository.ErrNoSummary):
		return http.StatusNotFound
	case errors.Is(err, financial.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, financial.ErrInvalidValue):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
