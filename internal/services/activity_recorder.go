package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/events"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
)

// activityRecorder writes an activity row inside the caller's transaction and
// publishes the matching event once that transaction has committed.
type activityRecorder struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func newActivityRecorder(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) *activityRecorder {
	return &activityRecorder{repo: repo, publisher: publisher, logger: logger}
}

func (r *activityRecorder) record(ctx context.Context, tx *gorm.DB, activity models.ActivityType, actorID *uint, subjectID uint, data map[string]any) (*events.Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity payload: %w", err)
	}

	subject := subjectID
	entry := &models.ActivityLog{
		Type:      activity,
		ActorID:   actorID,
		SubjectID: &subject,
		Payload:   datatypes.JSON(payload),
	}
	if err := r.repo.Activity().Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	return events.NewEvent(string(activity), actorID, &subject, data), nil
}

// publish never fails the use case; the activity row is already committed.
func (r *activityRecorder) publish(ctx context.Context, event *events.Event) {
	if r.publisher == nil || event == nil {
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
