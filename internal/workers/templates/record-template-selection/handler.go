// internal/workers/templates/record-template-selection/handler.go
package recordtemplateselection

import (
	"context"
	"fmt"
	"strings"

	"lesson-template-workers/internal/catalog"
	"lesson-template-workers/internal/common/camunda"
	"lesson-template-workers/internal/common/errors"
	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/common/metrics"
	"lesson-template-workers/internal/common/observability"
	"lesson-template-workers/internal/common/validation"
	"lesson-template-workers/internal/engine/matching"
	"lesson-template-workers/internal/models"
	"lesson-template-workers/internal/tracking"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "record-template-selection"
)

type EventRecorder interface {
	Record(ctx context.Context, events []tracking.Event) ([]tracking.Event, error)
}

// PreferenceInvalidator drops a cached preference signal so the next ranking
// sees the new selection.
type PreferenceInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type Handler struct {
	config      *Config
	catalog     catalog.Provider
	recorder    EventRecorder
	preferences PreferenceInvalidator
	logger      logger.Logger
	runtime     *camunda.JobRuntime
}

func NewHandler(config *Config, provider catalog.Provider, recorder EventRecorder, prefs PreferenceInvalidator, log logger.Logger, obs *observability.Observability) (*Handler, error) {
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
		recorder:    recorder,
		preferences: prefs,
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
	userID := strings.TrimSpace(input.UserID)
	templateID := strings.TrimSpace(input.TemplateID)
	if userID == "" || templateID == "" {
		return nil, errors.NewInputValidationError("userId and templateId are required")
	}

	var requestID uuid.UUID
	if input.RecommendationRequestID != "" {
		id, err := uuid.Parse(input.RecommendationRequestID)
		if err != nil {
			return nil, errors.NewInputValidationError(fmt.Sprintf("recommendationRequestId: %v", err))
		}
		requestID = id
	}

	snapshot, err := h.catalog.Snapshot(ctx)
	if err != nil {
		return nil, errors.NewCatalogUnavailableError(err)
	}

	tpl, ok := findTemplate(snapshot, templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", matching.ErrUnknownTemplateID, templateID)
	}

	events, err := h.recorder.Record(ctx, []tracking.Event{{
		RequestID:  requestID,
		UserID:     userID,
		TemplateID: tpl.ID,
		Type:       tracking.EventAccepted,
		Rank:       input.Rank,
		Score:      input.Score,
		Subject:    tpl.Subject,
		OutputType: tpl.OutputType,
	}})
	if err != nil {
		return nil, errors.NewEventRecordingFailedError(err)
	}
	metrics.RecommendationEvents.WithLabelValues(string(tracking.EventAccepted)).Inc()

	if h.preferences != nil {
		if err := h.preferences.Invalidate(ctx, userID); err != nil {
			h.logger.Warn("failed to invalidate cached preferences", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}

	event := events[0]
	h.logger.Info("template selection recorded", map[string]interface{}{
		"userId":     userID,
		"templateId": tpl.ID,
		"eventId":    event.ID.String(),
		"requestId":  input.RecommendationRequestID,
	})

	return &Output{
		EventID:    event.ID.String(),
		TemplateID: tpl.ID,
		RecordedAt: event.CreatedAt,
	}, nil
}

func findTemplate(snapshot []models.TemplateRecord, id string) (models.TemplateRecord, bool) {
	for _, t := range snapshot {
		if t.ID == id {
			return t, true
		}
	}
	return models.TemplateRecord{}, false
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
