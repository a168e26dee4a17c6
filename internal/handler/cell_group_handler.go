package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellgroup-api/internal/dto"
	"github.com/noah-isme/cellgroup-api/internal/models"
	"github.com/noah-isme/cellgroup-api/pkg/response"
)

type groupAnalyticsService interface {
	GroupView(ctx context.Context, groupID string) (*models.GroupAnalytics, error)
	MemberStreaks(ctx context.Context, groupID string) ([]models.MemberStreak, error)
	VisitorRecurrence(ctx context.Context, groupID string) ([]models.VisitorRecurrence, error)
}

type healthService interface {
	Record(ctx context.Context, groupID string, req dto.HealthRecordRequest) (*models.HealthHistoryRecord, error)
	History(ctx context.Context, groupID string) ([]models.HealthHistoryRecord, error)
	Summary(ctx context.Context, groupID string) (*dto.HealthSummaryResponse, error)
}

// CellGroupHandler serves the per-group analytics and health endpoints.
type CellGroupHandler struct {
	analytics groupAnalyticsService
	health    healthService
}

// NewCellGroupHandler constructs CellGroupHandler.
func NewCellGroupHandler(analytics groupAnalyticsService, health healthService) *CellGroupHandler {
	return &CellGroupHandler{analytics: analytics, health: health}
}

// Analytics godoc
// @Summary Annotated analytics view of a cell group
// @Description Recomputed from the stored reports on every call.
// @Tags CellGroups
// @Produce json
// @Param id path string true "Cell group ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cell-groups/{id}/analytics [get]
func (h *CellGroupHandler) Analytics(c *gin.Context) {
	start := time.Now()
	view, err := h.analytics.GroupView(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondComputed(c, view, start)
}

// Streaks godoc
// @Summary Consecutive absence streaks per member
// @Tags CellGroups
// @Produce json
// @Param id path string true "Cell group ID"
// @Success 200 {object} response.Envelope
// @Router /cell-groups/{id}/streaks [get]
func (h *CellGroupHandler) Streaks(c *gin.Context) {
	start := time.Now()
	streaks, err := h.analytics.MemberStreaks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondComputed(c, streaks, start)
}

// VisitorRecurrence godoc
// @Summary Visit counts per visitor
// @Tags CellGroups
// @Produce json
// @Param id path string true "Cell group ID"
// @Success 200 {object} response.Envelope
// @Router /cell-groups/{id}/visitor-recurrence [get]
func (h *CellGroupHandler) VisitorRecurrence(c *gin.Context) {
	start := time.Now()
	recurrences, err := h.analytics.VisitorRecurrence(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondComputed(c, recurrences, start)
}

// HealthHistory godoc
// @Summary Health history of a cell group
// @Tags CellGroups
// @Produce json
// @Param id path string true "Cell group ID"
// @Success 200 {object} response.Envelope
// @Router /cell-groups/{id}/health-history [get]
func (h *CellGroupHandler) HealthHistory(c *gin.Context) {
	records, err := h.health.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// RecordHealth godoc
// @Summary Record a health score
// @Description Appends a history row and updates the group's current health score.
// @Tags CellGroups
// @Accept json
// @Produce json
// @Param id path string true "Cell group ID"
// @Param payload body dto.HealthRecordRequest true "Health payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cell-groups/{id}/health-history [post]
func (h *CellGroupHandler) RecordHealth(c *gin.Context) {
	var req dto.HealthRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	record, err := h.health.Record(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// HealthSummary godoc
// @Summary Health tier and history summary
// @Tags CellGroups
// @Produce json
// @Param id path string true "Cell group ID"
// @Success 200 {object} response.Envelope
// @Router /cell-groups/{id}/health-summary [get]
func (h *CellGroupHandler) HealthSummary(c *gin.Context) {
	start := time.Now()
	summary, err := h.health.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondComputed(c, summary, start)
}
