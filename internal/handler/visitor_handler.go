package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellgroup-api/internal/dto"
	"github.com/noah-isme/cellgroup-api/internal/models"
	"github.com/noah-isme/cellgroup-api/pkg/response"
)

type visitorService interface {
	ListActive(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error)
	Get(ctx context.Context, id string) (*models.Visitor, error)
	Create(ctx context.Context, req dto.CreateVisitorRequest) (*models.Visitor, error)
	AdvanceFollowUp(ctx context.Context, id string) (*models.Visitor, error)
	Convert(ctx context.Context, id string) (*models.Visitor, error)
}

// VisitorHandler exposes visitor workflow endpoints.
type VisitorHandler struct {
	visitors visitorService
}

// NewVisitorHandler constructs VisitorHandler.
func NewVisitorHandler(visitors visitorService) *VisitorHandler {
	return &VisitorHandler{visitors: visitors}
}

// List godoc
// @Summary List active visitors
// @Description Converted visitors are excluded.
// @Tags Visitors
// @Produce json
// @Param search query string false "Search by name"
// @Param cellGroupId query string false "Filter by cell group"
// @Success 200 {object} response.Envelope
// @Router /visitors [get]
func (h *VisitorHandler) List(c *gin.Context) {
	filter := models.VisitorFilter{
		Search:      strings.TrimSpace(c.Query("search")),
		CellGroupID: strings.TrimSpace(c.Query("cellGroupId")),
	}
	visitors, err := h.visitors.ListActive(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visitors, nil)
}

// Get godoc
// @Summary Get visitor
// @Tags Visitors
// @Produce json
// @Param id path string true "Visitor ID"
// @Success 200 {object} response.Envelope
// @Router /visitors/{id} [get]
func (h *VisitorHandler) Get(c *gin.Context) {
	visitor, err := h.visitors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visitor, nil)
}

// Create godoc
// @Summary Register visitor
// @Tags Visitors
// @Accept json
// @Produce json
// @Param payload body dto.CreateVisitorRequest true "Visitor payload"
// @Success 201 {object} response.Envelope
// @Router /visitors [post]
func (h *VisitorHandler) Create(c *gin.Context) {
	var req dto.CreateVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	visitor, err := h.visitors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, visitor)
}

// AdvanceFollowUp godoc
// @Summary Advance the follow-up workflow
// @Tags Visitors
// @Produce json
// @Param id path string true "Visitor ID"
// @Success 200 {object} response.Envelope
// @Router /visitors/{id}/follow-up/advance [post]
func (h *VisitorHandler) AdvanceFollowUp(c *gin.Context) {
	visitor, err := h.visitors.AdvanceFollowUp(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visitor, nil)
}

// Convert godoc
// @Summary Convert visitor to member
// @Tags Visitors
// @Produce json
// @Param id path string true "Visitor ID"
// @Success 200 {object} response.Envelope
// @Router /visitors/{id}/convert [post]
func (h *VisitorHandler) Convert(c *gin.Context) {
	visitor, err := h.visitors.Convert(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visitor, nil)
}
