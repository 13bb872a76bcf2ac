// internal/workers/templates/find-best-template/handler.go
package findbesttemplate

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "find-best-template"
)

type Handler struct {
	config  *Config
	catalog catalog.Provider
	scorer  *matching.Scorer
	logger  logger.Logger
	runtime *camunda.JobRuntime
}

func NewHandler(config *Config, provider catalog.Provider, scorer *matching.Scorer, log logger.Logger, obs *observability.Observability) (*Handler, error) {
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
		config:  config,
		catalog: provider,
		scorer:  scorer,
		logger:  log,
		runtime: camunda.NewJobRuntime(TaskType, config.Timeout, schema, log, obs),
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

	best, err := h.scorer.FindBestTemplate(criteria, snapshot)
	if err != nil {
		return nil, err
	}

	metrics.TemplateRecommendations.WithLabelValues(TaskType, string(best.Confidence)).Inc()
	metrics.TemplateMatchScore.WithLabelValues(TaskType).Observe(best.Score)

	h.logger.Info("best template selected", map[string]interface{}{
		"subject":    criteria.Subject,
		"gradeLevel": criteria.GradeLevel,
		"outputType": criteria.OutputType,
		"templateId": best.Template.ID,
		"score":      best.Score,
		"confidence": best.Confidence,
	})

	return &Output{
		BestTemplate: best,
		CatalogSize:  len(snapshot),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
