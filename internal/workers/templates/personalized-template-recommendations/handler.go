// internal/workers/templates/personalized-template-recommendations/handler.go
package personalizedrecommendations

import (
	"context"
	"fmt"

	"lesson-template-workers/internal/catalog"
	"lesson-template-workers/internal/common/camunda"
	"lesson-template-workers/internal/common/errors"
	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/common/metrics"
	"lesson-template-workers/internal/common/observability"
	"lesson-template-workers/internal/common/validation"
	"lesson-template-workers/internal/engine/matching"
	"lesson-template-workers/internal/models"
	"lesson-template-workers/internal/preferences"
	"lesson-template-workers/internal/tracking"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "personalized-template-recommendations"
)

// EventRecorder is the part of tracking.Recorder this worker needs.
type EventRecorder interface {
	Record(ctx context.Context, events []tracking.Event) ([]tracking.Event, error)
}

type Handler struct {
	config      *Config
	catalog     catalog.Provider
	scorer      *matching.Scorer
	preferences preferences.Source
	recorder    EventRecorder
	logger      logger.Logger
	runtime     *camunda.JobRuntime
}

// NewHandler wires the worker. prefs and recorder may be nil: without prefs
// only signals passed in the job are used, without recorder nothing is logged.
func NewHandler(config *Config, provider catalog.Provider, scorer *matching.Scorer, prefs preferences.Source, recorder EventRecorder, log logger.Logger, obs *observability.Observability) (*Handler, error) {
	schemaJSON := inputSchema
	if config.InputSchema != "" {
		schemaJSON = config.InputSchema
	}
	schema, err := validation.NewSchema(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("%s input schema: %w", TaskType, err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		catalog:     provider,
		scorer:      scorer,
		preferences: prefs,
		recorder:    recorder,
		logger:      log,
		runtime:     camunda.NewJobRuntime(TaskType, config.Timeout, schema, log, obs),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runtime.Run(client, job, func(ctx context.Context) (interface{}, error) {
		var input Input
		if err := h.runtime.Decode(job.Variables, &input); err != nil {
			return nil, err
		}
		return h.execute(ctx, &input)
	})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	criteria, err := matching.NormalizeCriteria(input.RawCriteria)
	if err != nil {
		return nil, err
	}

	snapshot, err := h.catalog.Snapshot(ctx)
	if err != nil {
		return nil, errors.NewCatalogUnavailableError(err)
	}
	metrics.CatalogSnapshotSize.Set(float64(len(snapshot)))

	signal := h.resolveSignal(ctx, input)

	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = h.config.MaxResults
	}

	set, err := h.scorer.GetPersonalizedRecommendations(criteria, snapshot, signal, matching.MatchOptions{
		OutputTypeOnly: input.OutputTypeOnly,
		MaxResults:     maxResults,
	})
	if err != nil {
		return nil, err
	}

	if len(set.Skipped) > 0 {
		metrics.TemplatesSkipped.WithLabelValues(TaskType).Add(float64(len(set.Skipped)))
		h.logger.Warn("malformed templates skipped", map[string]interface{}{"skipped": set.Skipped})
	}
	for _, r := range set.Results {
		metrics.TemplateRecommendations.WithLabelValues(TaskType, string(r.Confidence)).Inc()
	}
	if len(set.Results) > 0 {
		metrics.TemplateMatchScore.WithLabelValues(TaskType).Observe(set.Results[0].Score)
	}

	requestID := uuid.New()
	h.recordImpressions(ctx, requestID, input.UserID, set.Results)

	h.logger.Info("personalized recommendations ranked", map[string]interface{}{
		"userId":          input.UserID,
		"subject":         criteria.Subject,
		"gradeLevel":      criteria.GradeLevel,
		"recommendations": len(set.Results),
		"personalized":    !signal.IsEmpty(),
		"requestId":       requestID.String(),
	})

	results := set.Results
	if results == nil {
		results = []models.MatchResult{}
	}
	return &Output{
		Recommendations:  results,
		RequestID:        requestID.String(),
		Personalized:     !signal.IsEmpty(),
		SkippedTemplates: set.Skipped,
	}, nil
}

// resolveSignal prefers the signal carried by the job. A failing preference
// store degrades to the unpersonalized ranking instead of failing the job.
func (h *Handler) resolveSignal(ctx context.Context, input *Input) *models.UserPreferenceSignal {
	if input.Preferences != nil {
		return input.Preferences
	}
	if h.preferences == nil || input.UserID == "" {
		return nil
	}

	signal, err := h.preferences.Signal(ctx, input.UserID)
	if err != nil {
		h.logger.Warn("failed to fetch preference signal", map[string]interface{}{
			"userId": input.UserID,
			"error":  errors.NewPreferencesUnavailableError(err).Details,
		})
		return nil
	}
	return signal
}

func (h *Handler) recordImpressions(ctx context.Context, requestID uuid.UUID, userID string, results []models.MatchResult) {
	if h.recorder == nil || !h.config.RecordImpressions || userID == "" || len(results) == 0 {
		return
	}

	events, err := h.recorder.Record(ctx, tracking.ShownEvents(requestID, userID, results))
	if err != nil {
		h.logger.Warn("failed to record shown recommendations", map[string]interface{}{
			"userId":    userID,
			"requestId": requestID.String(),
			"error":     err.Error(),
		})
		return
	}
	metrics.RecommendationEvents.WithLabelValues(string(tracking.EventShown)).Add(float64(len(events)))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
