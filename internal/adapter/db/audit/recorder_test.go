package audit

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-openapi-service/internal/domain/user"
)

func setupTestRecorder(t *testing.T) *Recorder {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	r := NewRecorder(db, zaptest.NewLogger(t))
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func TestRecorder_RecordAndRecent(t *testing.T) {
	r := setupTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	events := []user.CreationEvent{
		{UserID: "a", Transport: "http", RequestID: "r1", CreatedAt: base},
		{UserID: "b", Transport: "grpc", RequestID: "r2", CreatedAt: base.Add(time.Second)},
		{UserID: "c", Transport: "http", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, ev := range events {
		require.NoError(t, r.Record(ctx, ev))
	}

	got, err := r.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].UserID)
	assert.Equal(t, "b", got[1].UserID)
	assert.Equal(t, "grpc", got[1].Transport)
	assert.Equal(t, "r2", got[1].RequestID)
	assert.True(t, got[1].CreatedAt.Equal(events[1].CreatedAt))
}

func TestRecorder_Record_RequiresUserID(t *testing.T) {
	r := setupTestRecorder(t)

	err := r.Record(context.Background(), user.CreationEvent{Transport: "http"})
	assert.Error(t, err)
}

func TestRecorder_Recent_InvalidLimit(t *testing.T) {
	r := setupTestRecorder(t)

	_, err := r.Recent(context.Background(), 0)
	assert.Error(t, err)
}

func TestRecorder_Record_ClosedDB(t *testing.T) {
	r := setupTestRecorder(t)
	sqlDB, err := r.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = r.Record(context.Background(), user.CreationEvent{UserID: "a", Transport: "http", CreatedAt: time.Now()})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record creation event")
}
