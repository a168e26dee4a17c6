package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellgroup-api/internal/dto"
	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
	"github.com/noah-isme/cellgroup-api/pkg/response"
)

type reportService interface {
	List(ctx context.Context, filter models.WeeklyReportFilter) ([]models.WeeklyReport, error)
	Get(ctx context.Context, id string) (*models.WeeklyReport, error)
	Create(ctx context.Context, req dto.ReportRequest) (*models.WeeklyReport, error)
	Update(ctx context.Context, id string, req dto.ReportRequest) (*models.WeeklyReport, error)
	Delete(ctx context.Context, id string) error
}

// ReportHandler exposes weekly report endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List godoc
// @Summary List weekly reports
// @Tags Reports
// @Produce json
// @Param cellGroupId query string false "Filter by cell group"
// @Param dateFrom query string false "Earliest meeting date (YYYY-MM-DD)"
// @Param dateTo query string false "Latest meeting date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	filter := models.WeeklyReportFilter{CellGroupID: strings.TrimSpace(c.Query("cellGroupId"))}
	var err error
	if filter.DateFrom, err = dateQuery(c, "dateFrom"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.DateTo, err = dateQuery(c, "dateTo"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dateTo must not be before dateFrom"))
		return
	}

	reports, err := h.reports.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Get godoc
// @Summary Get weekly report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Create godoc
// @Summary Submit weekly report
// @Description Absentees are derived from the group roster and frozen on the report.
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	report, err := h.reports.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Update godoc
// @Summary Resubmit weekly report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.ReportRequest true "Report payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/{id} [put]
func (h *ReportHandler) Update(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	report, err := h.reports.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Delete godoc
// @Summary Delete weekly report
// @Tags Reports
// @Param id path string true "Report ID"
// @Success 204
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.reports.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
