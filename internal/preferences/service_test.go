package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		Lookback: 90 * 24 * time.Hour,
		CacheTTL: 10 * time.Minute,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestService(t *testing.T, db *sql.DB, rdb *redis.Client) *Service {
	s := NewService(createTestConfig(), db, rdb, logger.NewTestLogger(t))
	s.now = func() time.Time { return fixedNow }
	return s
}

func expectSignalQueries(mock sqlmock.Sqlmock, userID string) {
	since := fixedNow.Add(-90 * 24 * time.Hour)

	mock.ExpectQuery(`SELECT output_type, COUNT\(\*\)`).
		WithArgs(userID, since).
		WillReturnRows(sqlmock.NewRows([]string{"output_type", "count"}).
			AddRow("lesson-plan", 4).
			AddRow("presentation", 1))

	mock.ExpectQuery(`SELECT subject, COUNT\(\*\)`).
		WithArgs(userID, since).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "count"}).
			AddRow("Toán", 5))

	mock.ExpectQuery(`SELECT preferred_difficulty FROM user_preferences WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"preferred_difficulty"}).AddRow("intermediate"))
}

// ==========================
// Service Tests
// ==========================

func TestService_Signal_LoadsAndCaches(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	expectSignalQueries(mock, "user-1")
	svc := newTestService(t, db, rdb)

	signal, err := svc.Signal(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, map[models.OutputType]int{
		models.OutputTypeLessonPlan:   4,
		models.OutputTypePresentation: 1,
	}, signal.OutputTypeCounts)
	assert.Equal(t, map[string]int{"Toán": 5}, signal.SubjectCounts)
	assert.Equal(t, models.DifficultyIntermediate, signal.PreferredDifficulty)

	// Second call is served from redis; no further queries are expected.
	again, err := svc.Signal(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, signal, again)
	assert.Equal(t, 10*time.Minute, mr.TTL("user:preferences:user-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Signal_UnknownUser(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, redisMock := redismock.NewClientMock()

	mock.ExpectQuery(`SELECT output_type`).
		WillReturnRows(sqlmock.NewRows([]string{"output_type", "count"}))
	mock.ExpectQuery(`SELECT subject`).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "count"}))
	mock.ExpectQuery(`SELECT preferred_difficulty`).
		WillReturnError(sql.ErrNoRows)

	empty, _ := json.Marshal(&models.UserPreferenceSignal{})
	redisMock.ExpectGet("user:preferences:new-user").RedisNil()
	redisMock.ExpectSet("user:preferences:new-user", empty, 10*time.Minute).SetVal("OK")

	signal, err := newTestService(t, db, rdb).Signal(context.Background(), "new-user")
	require.NoError(t, err)
	assert.True(t, signal.IsEmpty())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Signal_IgnoresUnknownDifficulty(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT output_type`).
		WillReturnRows(sqlmock.NewRows([]string{"output_type", "count"}))
	mock.ExpectQuery(`SELECT subject`).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "count"}))
	mock.ExpectQuery(`SELECT preferred_difficulty`).
		WillReturnRows(sqlmock.NewRows([]string{"preferred_difficulty"}).AddRow("expert"))

	signal, err := newTestService(t, db, nil).Signal(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, signal.PreferredDifficulty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Signal_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("user:preferences:user-3").RedisNil()
	mock.ExpectQuery(`SELECT output_type`).WillReturnError(errors.New("connection refused"))

	_, err := newTestService(t, db, rdb).Signal(context.Background(), "user-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count usage by output_type")

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Signal_EmptyUserID(t *testing.T) {
	db, mock := setupMockDB(t)

	signal, err := newTestService(t, db, nil).Signal(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, signal.IsEmpty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Invalidate(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel("user:preferences:user-1").SetVal(1)

	svc := newTestService(t, nil, rdb)
	require.NoError(t, svc.Invalidate(context.Background(), "user-1"))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Signal_SkipsNullGroupKeys(t *testing.T) {
	db, mock := setupMockDB(t)
	since := fixedNow.Add(-90 * 24 * time.Hour)

	mock.ExpectQuery(`SELECT output_type, COUNT\(\*\)`).
		WithArgs("user-2", since).
		WillReturnRows(sqlmock.NewRows([]string{"output_type", "count"}).
			AddRow(nil, 7).
			AddRow("assessment", 2))
	mock.ExpectQuery(`SELECT subject, COUNT\(\*\)`).
		WithArgs("user-2", since).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "count"}).
			AddRow("Ngữ văn", 3).
			AddRow(nil, 4).
			AddRow("  ", 1))
	mock.ExpectQuery(`SELECT preferred_difficulty`).
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"preferred_difficulty"}).AddRow(nil))

	signal, err := newTestService(t, db, nil).Signal(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, map[models.OutputType]int{models.OutputTypeAssessment: 2}, signal.OutputTypeCounts)
	assert.Equal(t, map[string]int{"Ngữ văn": 3}, signal.SubjectCounts)
	assert.Empty(t, signal.PreferredDifficulty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Signal_EncodeFailureSkipsCacheWrite(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	expectSignalQueries(mock, "user-1")
	svc := newTestService(t, db, rdb)
	svc.encode = func(interface{}) ([]byte, error) { return nil, errors.New("encode failed") }

	signal, err := svc.Signal(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyIntermediate, signal.PreferredDifficulty)
	assert.False(t, mr.Exists("user:preferences:user-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
