// internal/workers/compliance/evaluate-compliance/handler.go
package evaluatecompliance

import (
	"context"
	"fmt"
	"sort"

	"lesson-template-workers/internal/common/camunda"
	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/common/metrics"
	"lesson-template-workers/internal/common/observability"
	"lesson-template-workers/internal/common/validation"
	"lesson-template-workers/internal/engine/compliance"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-compliance"
)

type Handler struct {
	config  *Config
	engine  *compliance.Engine
	logger  logger.Logger
	runtime *camunda.JobRuntime
}

func NewHandler(config *Config, engine *compliance.Engine, log logger.Logger, obs *observability.Observability) (*Handler, error) {
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
		engine:  engine,
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
	report, err := h.engine.Evaluate(ctx, compliance.Request{
		Content:    input.Content,
		GradeLevel: input.GradeLevel,
		Subject:    input.Subject,
		Standards:  input.Standards,
	})
	if err != nil {
		return nil, err
	}

	metrics.ComplianceEvaluations.WithLabelValues(report.Overall.Grade).Inc()
	scores := make(map[string]int, len(report.Standards))
	for name, r := range report.Standards {
		metrics.ComplianceStandardScore.WithLabelValues(name).Observe(float64(r.Score))
		scores[name] = r.Score
	}

	h.logger.Info("compliance evaluated", map[string]interface{}{
		"standards":     sortedKeys(scores),
		"scores":        scores,
		"overallScore":  report.Overall.Score,
		"grade":         report.Overall.Grade,
		"contentLength": len(input.Content),
	})

	return &Output{
		Compliance:      report,
		ComplianceScore: report.Overall.Score,
		ComplianceGrade: report.Overall.Grade,
	}, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
