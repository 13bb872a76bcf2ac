// internal/workers/templates/compare-templates/handler.go
package comparetemplates

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
	TaskType = "compare-templates"
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

	results, err := h.scorer.CompareTemplates(input.TemplateIDs, criteria, snapshot)
	if err != nil {
		return nil, err
	}

	h.logger.Info("templates compared", map[string]interface{}{
		"requested":   len(input.TemplateIDs),
		"compared":    len(results),
		"recommended": results[0].Template.ID,
		"topScore":    results[0].Score,
	})

	return &Output{
		Comparison:            results,
		RecommendedTemplateID: results[0].Template.ID,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
