package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-openapi-service/internal/domain/user"
)

// MaxRecent bounds the number of events returned by Recent.
const MaxRecent = 1000

// Recorder persists user creation events using GORM.
type Recorder struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewRecorder creates a new instance of Recorder.
func NewRecorder(db *gorm.DB, log *zap.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

// CreationEventSchema represents the database schema for the user_creation_events table.
type CreationEventSchema struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"size:64;not null;index"`
	Transport string    `gorm:"size:16;not null"`
	RequestID string    `gorm:"size:128"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for the CreationEventSchema model.
func (CreationEventSchema) TableName() string {
	return "user_creation_events"
}

// Migrate creates or updates the events table.
func (r *Recorder) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&CreationEventSchema{}); err != nil {
		return fmt.Errorf("failed to migrate user_creation_events: %w", err)
	}
	return nil
}

// Record inserts one creation event.
func (r *Recorder) Record(ctx context.Context, ev user.CreationEvent) error {
	if ev.UserID == "" {
		return errors.New("creation event without user id")
	}

	model := CreationEventSchema{
		UserID:    ev.UserID,
		Transport: ev.Transport,
		RequestID: ev.RequestID,
		CreatedAt: ev.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to record creation event", zap.Error(err), zap.String("user_id", ev.UserID))
		return fmt.Errorf("failed to record creation event: %w", err)
	}

	r.log.Debug("creation event recorded", zap.Int64("event_id", model.ID), zap.String("user_id", ev.UserID))
	return nil
}

// Recent returns up to limit events, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]user.CreationEvent, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	if limit > MaxRecent {
		limit = MaxRecent
	}

	var models []CreationEventSchema
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list creation events", zap.Error(err))
		return nil, fmt.Errorf("failed to list creation events: %w", err)
	}

	events := make([]user.CreationEvent, 0, len(models))
	for _, m := range models {
		events = append(events, user.CreationEvent{
			UserID:    m.UserID,
			Transport: m.Transport,
			RequestID: m.RequestID,
			CreatedAt: m.CreatedAt.UTC(),
		})
	}
	return events, nil
}
