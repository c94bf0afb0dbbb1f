package service

import (
	"context"
	"strings"
	"time"

	"cookstove_tracker/internal/events"
	"cookstove_tracker/internal/logger"
	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"

	"github.com/google/uuid"
)

// activityRecorder is what the registry, ingestor and reporting need from the log.
type activityRecorder interface {
	Record(ctx context.Context, e models.ActivityEvent)
}

// ActivityService appends lifecycle events to the activity log and forwards
// them to the event publisher. Recording never fails the caller.
type ActivityService struct {
	eventRepo repository.EventRepo
	publisher events.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewActivityService(eventRepo repository.EventRepo, publisher events.Publisher, log *logger.Logger) *ActivityService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ActivityService{
		eventRepo: eventRepo,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ActivityService) Record(ctx context.Context, e models.ActivityEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	e.Type = normalizeEventType(e.Type)

	if err := s.eventRepo.Append(ctx, e); err != nil && s.log != nil {
		s.log.Warnw("activity_append_failed", "type", e.Type, "err", err)
	}
	// publisher failures are logged by the publisher
	_ = s.publisher.Publish(ctx, events.Event{
		ID:          e.EventID,
		Type:        e.Type,
		StoveID:     e.StoveID,
		OccurredAt:  e.OccurredAt,
		Description: e.Description,
		Data:        e.Metadata,
	})
}

func (s *ActivityService) List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error) {
	q, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, q)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares the repository query and validates the range and limit.
func normalizeAndValidateFilter(f LogFilter) (repository.EventQuery, error) {
	f.StoveID = strings.TrimSpace(f.StoveID)
	if err := checkStruct(f); err != nil {
		return repository.EventQuery{}, err
	}

	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.EventQuery{}, errInvalidTimeRange
	}

	return repository.EventQuery{
		From:    from,
		To:      to,
		Type:    normalizeEventType(f.Type),
		StoveID: f.StoveID,
		Limit:   f.Limit,
	}, nil
}

var errInvalidTimeRange = newError(ErrValidation, "invalid time range: from must be <= to")
