package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"lesson-template-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var catalogColumns = []string{
	"id", "name", "subject", "grade_levels", "output_type", "difficulty",
	"tags", "compliance_labels", "recommended_tools",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// ==========================
// PostgresProvider Tests
// ==========================

func TestPostgresProvider_Snapshot(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows(catalogColumns).
		AddRow("T1", "Phương trình bậc nhất", "Toán", "{7,8}", "lesson-plan", "intermediate",
			"{algebra,equations}", "{GDPT 2018}", "{GeoGebra}").
		AddRow("T2", nil, "Toán", "{7}", "presentation", nil, nil, nil, nil).
		AddRow("BROKEN", "Missing grades", "Ngữ văn", nil, "lesson-plan", "beginner", "{}", nil, nil)

	mock.ExpectQuery(`SELECT id, name, subject, grade_levels, output_type, difficulty`).
		WillReturnRows(rows)

	templates, err := NewPostgresProvider(db).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 3)

	assert.Equal(t, models.TemplateRecord{
		ID:               "T1",
		Name:             "Phương trình bậc nhất",
		Subject:          "Toán",
		GradeLevels:      []int{7, 8},
		OutputType:       models.OutputTypeLessonPlan,
		Difficulty:       models.DifficultyIntermediate,
		Tags:             []string{"algebra", "equations"},
		ComplianceLabels: []string{"GDPT 2018"},
		RecommendedTools: []string{"GeoGebra"},
	}, templates[0])

	assert.Equal(t, "T2", templates[1].ID)
	assert.Empty(t, templates[1].Name)
	assert.Empty(t, templates[1].Difficulty)
	assert.Empty(t, templates[1].Tags)

	assert.Equal(t, "BROKEN", templates[2].ID)
	assert.Empty(t, templates[2].GradeLevels, "NULL grade levels load empty and are rejected later by the scorer")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_Snapshot_Empty(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM lesson_templates`).
		WillReturnRows(sqlmock.NewRows(catalogColumns))

	templates, err := NewPostgresProvider(db).Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, templates)
	assert.Empty(t, templates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_Snapshot_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM lesson_templates`).
		WillReturnError(errors.New("connection reset"))

	_, err := NewPostgresProvider(db).Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query lesson_templates")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_Snapshot_RowError(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows(catalogColumns).
		AddRow("T1", "a", "Toán", "{7}", "lesson-plan", nil, nil, nil, nil).
		RowError(0, errors.New("bad row"))
	mock.ExpectQuery(`FROM lesson_templates`).WillReturnRows(rows)

	_, err := NewPostgresProvider(db).Snapshot(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatic_SnapshotIsACopy(t *testing.T) {
	src := Static{{ID: "A"}, {ID: "B"}}

	snap, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	snap[0].ID = "changed"

	assert.Equal(t, "A", src[0].ID)
}
