package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"lesson-template-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

func newTestRecorder(t *testing.T) (*Recorder, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := NewRecorder(db)
	r.now = func() time.Time { return fixedNow }
	return r, mock
}

func TestShownEvents(t *testing.T) {
	req := uuid.New()
	results := []models.MatchResult{
		{Template: models.TemplateRecord{ID: "T1", Subject: "Toán", OutputType: models.OutputTypeLessonPlan}, Score: 1},
		{Template: models.TemplateRecord{ID: "T2", Subject: "Toán", OutputType: models.OutputTypePresentation}, Score: 0.6},
	}

	events := ShownEvents(req, "user-1", results)
	require.Len(t, events, 2)
	assert.Equal(t, EventShown, events[0].Type)
	assert.Equal(t, 1, events[0].Rank)
	assert.Equal(t, 2, events[1].Rank)
	assert.Equal(t, 0.6, events[1].Score)
	assert.Equal(t, req, events[1].RequestID)
}

func TestRecorder_Record_Shown(t *testing.T) {
	r, mock := newTestRecorder(t)
	req := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO recommendation_events`).
		WithArgs(sqlmock.AnyArg(), req, "user-1", "T1", "shown", sqlmock.AnyArg(), 1.0, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO recommendation_events`).
		WithArgs(sqlmock.AnyArg(), req, "user-1", "T2", "shown", sqlmock.AnyArg(), 0.6, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	events, err := r.Record(context.Background(), []Event{
		{RequestID: req, UserID: "user-1", TemplateID: "T1", Type: EventShown, Rank: 1, Score: 1},
		{RequestID: req, UserID: "user-1", TemplateID: "T2", Type: EventShown, Rank: 2, Score: 0.6},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, fixedNow, events[1].CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_Record_AcceptedAlsoCountsUsage(t *testing.T) {
	r, mock := newTestRecorder(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO recommendation_events`).
		WithArgs(id, uuid.Nil, "user-1", "T1", "accepted", sqlmock.AnyArg(), 0.0, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO template_usage_events`).
		WithArgs("user-1", "T1", "Toán", "lesson-plan", fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	events, err := r.Record(context.Background(), []Event{{
		ID:         id,
		UserID:     "user-1",
		TemplateID: "T1",
		Type:       EventAccepted,
		Subject:    "Toán",
		OutputType: models.OutputTypeLessonPlan,
	}})
	require.NoError(t, err)
	assert.Equal(t, id, events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_Record_RollsBackOnFailure(t *testing.T) {
	r, mock := newTestRecorder(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO recommendation_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO recommendation_events`).
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	_, err := r.Record(context.Background(), []Event{
		{UserID: "u", TemplateID: "T1", Type: EventShown, Rank: 1},
		{UserID: "u", TemplateID: "T2", Type: EventShown, Rank: 2},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert recommendation event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_Record_Empty(t *testing.T) {
	r, mock := newTestRecorder(t)

	events, err := r.Record(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
