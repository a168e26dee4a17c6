package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
	"github.com/noah-isme/cellgroup-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, filter models.CellGroupFilter) (models.DashboardSummary, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Health summary across cell groups
// @Tags Dashboard
// @Produce json
// @Param zoneId query string false "Zone ID"
// @Param statusId query string false "Status ID"
// @Param search query string false "Search by group name"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	filter := models.CellGroupFilter{
		ZoneID:   strings.TrimSpace(c.Query("zoneId")),
		StatusID: strings.TrimSpace(c.Query("statusId")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	start := time.Now()
	summary, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondComputed(c, summary, start)
}
