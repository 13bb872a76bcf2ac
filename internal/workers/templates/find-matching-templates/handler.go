// internal/workers/templates/find-matching-templates/handler.go
package findmatchingtemplates

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "find-matching-templates"
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

	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = h.config.MaxResults
	}

	set, err := h.scorer.FindMatchingTemplates(criteria, snapshot, matching.MatchOptions{
		OutputTypeOnly: input.OutputTypeOnly,
		MaxResults:     maxResults,
	})
	if err != nil {
		return nil, err
	}

	if len(set.Skipped) > 0 {
		metrics.TemplatesSkipped.WithLabelValues(TaskType).Add(float64(len(set.Skipped)))
		h.logger.Warn("malformed templates skipped", map[string]interface{}{
			"skipped": set.Skipped,
		})
	}
	for _, r := range set.Results {
		metrics.TemplateRecommendations.WithLabelValues(TaskType, string(r.Confidence)).Inc()
	}
	if len(set.Results) > 0 {
		metrics.TemplateMatchScore.WithLabelValues(TaskType).Observe(set.Results[0].Score)
	}

	h.logger.Info("matching templates ranked", map[string]interface{}{
		"subject":        criteria.Subject,
		"gradeLevel":     criteria.GradeLevel,
		"outputType":     criteria.OutputType,
		"outputTypeOnly": input.OutputTypeOnly,
		"matches":        len(set.Results),
		"catalogSize":    len(snapshot),
	})

	matches := set.Results
	if matches == nil {
		matches = []models.MatchResult{}
	}
	return &Output{
		Matches:          matches,
		TotalMatches:     len(matches),
		HasMatches:       len(matches) > 0,
		SkippedTemplates: set.Skipped,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
