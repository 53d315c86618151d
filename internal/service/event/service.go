package event

import (
	"context"
	"encoding/json"

	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/repository"
	"github.com/queueflow/queueflow-api/pkg/logger"
)

// Service appends domain events to the outbox table. Publication to the
// broker happens asynchronously in the worker.
type Service struct {
	repo   repository.OutboxRepository
	logger *logger.Logger
}

func NewService(repo repository.OutboxRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Emit records an event. Emission is best-effort: a failure is logged and
// never propagated, so user-facing operations don't fail on outbox errors.
func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal event payload", "event_type", eventType)
		return
	}

	evt := &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	}
	if err := s.repo.Create(ctx, evt); err != nil {
		s.logger.Error(err, "failed to enqueue event", "event_type", eventType)
	}
}
