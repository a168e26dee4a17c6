package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellgroup-api/internal/dto"
	"github.com/noah-isme/cellgroup-api/internal/models"
	"github.com/noah-isme/cellgroup-api/pkg/response"
)

type analyticsService interface {
	Weeks(ctx context.Context) ([]models.WeekBucket, error)
	WeeklyRanking(ctx context.Context, label string) (models.WeeklyRanking, error)
	SystemMetrics() models.SystemMetrics
}

// AnalyticsHandler serves cross-group analytics endpoints.
type AnalyticsHandler struct {
	service analyticsService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(service analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Weeks godoc
// @Summary Meeting weeks with their reports
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/weeks [get]
func (h *AnalyticsHandler) Weeks(c *gin.Context) {
	start := time.Now()
	weeks, err := h.service.Weeks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondComputed(c, weeks, start)
}

// WeeklyRanking godoc
// @Summary Rank a week's reports by attendance
// @Tags Analytics
// @Produce json
// @Param week query string false "Week label, e.g. Aug 4–Aug 10, 2025. Defaults to the latest week"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/weekly-ranking [get]
func (h *AnalyticsHandler) WeeklyRanking(c *gin.Context) {
	start := time.Now()
	ranking, err := h.service.WeeklyRanking(c.Request.Context(), strings.TrimSpace(c.Query("week")))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondComputed(c, dto.NewWeeklyRankingResponse(ranking), start)
}

// System godoc
// @Summary Process instrumentation snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.SystemMetrics(), nil)
}
