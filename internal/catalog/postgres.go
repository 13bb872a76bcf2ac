// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"lesson-template-workers/internal/models"

	"github.com/lib/pq"
)

const snapshotQuery = `
	SELECT id, name, subject, grade_levels, output_type, difficulty,
	       tags, compliance_labels, recommended_tools
	FROM lesson_templates
	WHERE active = TRUE
	ORDER BY position, id`

// PostgresProvider reads the catalog from the lesson_templates table. NULL
// columns load as zero values so incomplete rows still reach the ranking and
// are reported there as malformed.
type PostgresProvider struct {
	db *sql.DB
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) Snapshot(ctx context.Context) ([]models.TemplateRecord, error) {
	rows, err := p.db.QueryContext(ctx, snapshotQuery)
	if err != nil {
		return nil, fmt.Errorf("query lesson_templates: %w", err)
	}
	defer rows.Close()

	templates := make([]models.TemplateRecord, 0, 64)
	for rows.Next() {
		var (
			id, name, subject, outputType, difficulty sql.NullString
			grades                                    pq.Int64Array
			tags, labels, tools                       pq.StringArray
		)
		if err := rows.Scan(&id, &name, &subject, &grades, &outputType, &difficulty, &tags, &labels, &tools); err != nil {
			return nil, fmt.Errorf("scan lesson_templates: %w", err)
		}

		tpl := models.TemplateRecord{
			ID:               id.String,
			Name:             name.String,
			Subject:          subject.String,
			OutputType:       models.OutputType(outputType.String),
			Difficulty:       models.Difficulty(difficulty.String),
			Tags:             []string(tags),
			ComplianceLabels: []string(labels),
			RecommendedTools: []string(tools),
		}
		if len(grades) > 0 {
			tpl.GradeLevels = make([]int, len(grades))
			for i, g := range grades {
				tpl.GradeLevels[i] = int(g)
			}
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lesson_templates: %w", err)
	}

	return templates, nil
}
