// Package tracking is the write-only log of recommendations shown to users and
// templates they went on to select. Nothing in the ranking path reads it back
// directly; accepted selections feed the preference signal through
// template_usage_events.
package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lesson-template-workers/internal/models"

	"github.com/google/uuid"
)

type EventType string

const (
	EventShown    EventType = "shown"
	EventAccepted EventType = "accepted"
)

// Event is one row of recommendation_events. Rank is 1-based; zero means the
// template was picked outside a ranked list.
type Event struct {
	ID         uuid.UUID
	RequestID  uuid.UUID
	UserID     string
	TemplateID string
	Type       EventType
	Rank       int
	Score      float64
	Subject    string
	OutputType models.OutputType
	CreatedAt  time.Time
}

// Recorder writes events to postgres, one transaction per batch.
type Recorder struct {
	db  *sql.DB
	now func() time.Time
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db, now: time.Now}
}

// ShownEvents builds one shown event per result, ranked in slice order.
func ShownEvents(requestID uuid.UUID, userID string, results []models.MatchResult) []Event {
	events := make([]Event, 0, len(results))
	for i, r := range results {
		events = append(events, Event{
			RequestID:  requestID,
			UserID:     userID,
			TemplateID: r.Template.ID,
			Type:       EventShown,
			Rank:       i + 1,
			Score:      r.Score,
			Subject:    r.Template.Subject,
			OutputType: r.Template.OutputType,
		})
	}
	return events
}

// Record inserts events atomically and returns them with ids and timestamps
// filled. Accepted events also count as template usage.
func (r *Recorder) Record(ctx context.Context, events []Event) ([]Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tracking tx: %w", err)
	}
	defer tx.Rollback()

	now := r.now().UTC()
	out := make([]Event, len(events))
	for i, e := range events {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}

		var rank sql.NullInt64
		if e.Rank > 0 {
			rank = sql.NullInt64{Int64: int64(e.Rank), Valid: true}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recommendation_events (id, request_id, user_id, template_id, event_type, rank, score, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.RequestID, e.UserID, e.TemplateID, string(e.Type), rank, e.Score, e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert recommendation event: %w", err)
		}

		if e.Type == EventAccepted {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO template_usage_events (user_id, template_id, subject, output_type, created_at)
				VALUES ($1, $2, $3, $4, $5)`,
				e.UserID, e.TemplateID, e.Subject, string(e.OutputType), e.CreatedAt,
			); err != nil {
				return nil, fmt.Errorf("insert usage event: %w", err)
			}
		}
		out[i] = e
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tracking tx: %w", err)
	}
	return out, nil
}
