package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellgroup-api/internal/analytics"
	"github.com/noah-isme/cellgroup-api/internal/dto"
	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
)

type visitorRepository interface {
	List(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error)
	FindByID(ctx context.Context, id string) (*models.Visitor, error)
	Create(ctx context.Context, visitor *models.Visitor) error
	UpdateStatus(ctx context.Context, id string, status models.VisitorStatus) error
	AdvanceFollowUp(ctx context.Context, id string, next models.FollowUpStatus) (models.VisitorStatus, error)
}

// VisitorService manages the visitor follow-up workflow and conversion.
type VisitorService struct {
	repo      visitorRepository
	groups    cellGroupReader
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewVisitorService constructs a VisitorService.
func NewVisitorService(repo visitorRepository, groups cellGroupReader, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *VisitorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitorService{repo: repo, groups: groups, validator: validate, metrics: metrics, logger: logger}
}

// ListActive returns visitors available for selection. Converted visitors are never included.
func (s *VisitorService) ListActive(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	start := time.Now()
	visitors, err := s.repo.List(ctx, filter)
	observe(s.metrics, "visitors_list", start)
	if err != nil {
		return nil, appErrors.Upstream(err, "list visitors")
	}
	return analytics.ActiveVisitors(visitors), nil
}

// Get returns a visitor by id, converted visitors included.
func (s *VisitorService) Get(ctx context.Context, id string) (*models.Visitor, error) {
	visitor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "visitor", id, "load visitor")
	}
	return visitor, nil
}

// Create registers a new visitor with status new and follow-up pending.
func (s *VisitorService) Create(ctx context.Context, req dto.CreateVisitorRequest) (*models.Visitor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid visitor payload")
	}
	groupID := normalizeOptional(req.CellGroupID)
	if groupID != nil {
		if _, err := s.groups.FindByID(ctx, *groupID); err != nil {
			return nil, lookupError(err, "cell group", *groupID, "load cell group")
		}
	}

	visitor := &models.Visitor{
		CellGroupID:    groupID,
		Name:           strings.TrimSpace(req.Name),
		Phone:          normalizeOptional(req.Phone),
		Status:         models.VisitorStatusNew,
		FollowUpStatus: models.FollowUpPending,
	}
	if err := s.repo.Create(ctx, visitor); err != nil {
		return nil, appErrors.Upstream(err, "create visitor")
	}
	return visitor, nil
}

// AdvanceFollowUp moves the follow-up state one step along pending, in_progress, done and back
// to pending. A visitor still marked new becomes followed_up on the first advance.
func (s *VisitorService) AdvanceFollowUp(ctx context.Context, id string) (*models.Visitor, error) {
	visitor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if visitor.Converted() {
		return nil, appErrors.Validation("converted visitors have no follow-up workflow", "visitor_id", id)
	}

	next := visitor.FollowUpStatus.Advance()
	status, err := s.repo.AdvanceFollowUp(ctx, id, next)
	if err != nil {
		return nil, lookupError(err, "visitor", id, "advance follow-up")
	}
	visitor.FollowUpStatus = next
	visitor.Status = status
	return visitor, nil
}

// Convert marks a visitor as a member. Converting twice is a no-op.
func (s *VisitorService) Convert(ctx context.Context, id string) (*models.Visitor, error) {
	visitor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if visitor.Converted() {
		return visitor, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, models.VisitorStatusConverted); err != nil {
		return nil, lookupError(err, "visitor", id, "convert visitor")
	}
	visitor.Status = models.VisitorStatusConverted
	s.logger.Info("visitor converted", zap.String("visitor_id", id))
	return visitor, nil
}
