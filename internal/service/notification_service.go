package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
	"github.com/noah-isme/cellgroup-api/pkg/jobs"
)

const factJobPrefix = "fact"

type factPublisher interface {
	Publish(ctx context.Context, fact models.Fact) (bool, error)
}

type jobDispatcher interface {
	TryEnqueue(job jobs.Job) error
}

// NotificationService hands derived facts to the external notifier through the outbox. Delivery
// is asynchronous and best effort; it never fails the computation that produced the facts.
type NotificationService struct {
	enabled    bool
	dispatcher jobDispatcher
	publisher  factPublisher
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewNotificationService constructs a NotificationService. Call AttachDispatcher before Notify
// when enabled.
func NewNotificationService(enabled bool, publisher factPublisher, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		enabled:   enabled,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AttachDispatcher wires the queue that runs HandleJob.
func (s *NotificationService) AttachDispatcher(dispatcher jobDispatcher) {
	s.dispatcher = dispatcher
}

// Notify enqueues facts for delivery. Disabled services and empty inputs do nothing.
func (s *NotificationService) Notify(ctx context.Context, facts []models.Fact) {
	if !s.enabled || s.dispatcher == nil || len(facts) == 0 {
		return
	}
	observed := s.now()
	for _, fact := range facts {
		if fact.ObservedAt.IsZero() {
			fact.ObservedAt = observed
		}
		job := jobs.Job{
			ID:      fmt.Sprintf("%s:%s:%s:%s", factJobPrefix, fact.Kind, fact.CellGroupID, fact.EntityID),
			Type:    string(fact.Kind),
			Payload: fact,
		}
		if err := s.dispatcher.TryEnqueue(job); err != nil {
			s.logger.Warn("fact not enqueued", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// HandleJob publishes one fact. Publishing failures come back as retryable upstream errors.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	fact, ok := job.Payload.(models.Fact)
	if !ok {
		return appErrors.Validation("unexpected fact payload", "job_id", job.ID)
	}
	pushed, err := s.publisher.Publish(ctx, fact)
	if err != nil {
		return appErrors.Upstream(err, "publish fact")
	}
	if pushed {
		s.metrics.RecordFactPublished(fact.Kind)
		s.logger.Debug("fact published",
			zap.String("kind", string(fact.Kind)),
			zap.String("cell_group_id", fact.CellGroupID),
			zap.String("entity_id", fact.EntityID),
			zap.String("week", fact.Week),
		)
	}
	return nil
}
