// Package catalog supplies read-only snapshots of the lesson template catalog.
// Every Snapshot call returns a freshly allocated slice; callers may keep it
// for the duration of one ranking without observing concurrent catalog edits.
package catalog

import (
	"context"

	"lesson-template-workers/internal/models"
)

// Provider returns the templates currently in the catalog, in catalog order.
type Provider interface {
	Snapshot(ctx context.Context) ([]models.TemplateRecord, error)
}

// Static serves a fixed list of templates. Used by tests and local runs.
type Static []models.TemplateRecord

func (s Static) Snapshot(_ context.Context) ([]models.TemplateRecord, error) {
	out := make([]models.TemplateRecord, len(s))
	copy(out, s)
	return out, nil
}
