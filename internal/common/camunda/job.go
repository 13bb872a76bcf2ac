// internal/common/camunda/job.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lesson-template-workers/internal/common/errors"
	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/common/metrics"
	"lesson-template-workers/internal/common/observability"
	"lesson-template-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultJobTimeout = 10 * time.Second

// JobRuntime carries what every handler does around its business logic:
// variable validation, metrics, tracing, completion and BPMN error mapping.
type JobRuntime struct {
	TaskType string
	Timeout  time.Duration
	Schema   *validation.Schema
	Logger   logger.Logger
	Errors   *errors.ErrorHandler
	Obs      *observability.Observability
}

// NewJobRuntime builds the runtime for taskType. schema may be nil to skip
// validation; log should already carry the taskType field.
func NewJobRuntime(taskType string, timeout time.Duration, schema *validation.Schema, log logger.Logger, obs *observability.Observability) *JobRuntime {
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &JobRuntime{
		TaskType: taskType,
		Timeout:  timeout,
		Schema:   schema,
		Logger:   log,
		Errors:   errors.NewErrorHandler(log),
		Obs:      obs,
	}
}

// Decode validates raw job variables and unmarshals them into dst.
func (r *JobRuntime) Decode(variables string, dst interface{}) error {
	if r.Schema != nil {
		if res := r.Schema.ValidateJSON(variables); !res.Valid {
			return errors.NewInputValidationError(res.Error())
		}
	}
	if err := json.Unmarshal([]byte(variables), dst); err != nil {
		return errors.NewInputValidationError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}

// Run executes fn under the job timeout and completes the job with its
// output, or hands the error to the ErrorHandler.
func (r *JobRuntime) Run(client worker.JobClient, job entities.Job, fn func(ctx context.Context) (interface{}, error)) {
	timer := metrics.StartJob(r.TaskType)
	start := time.Now()

	r.Logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	ctx, span := r.Obs.StartSpan(ctx, r.TaskType,
		attribute.Int64("job.key", job.Key),
		attribute.Int64("process.instance.key", job.ProcessInstanceKey),
	)
	defer span.End()

	output, err := fn(ctx)
	if err != nil {
		stdErr := errors.FromEngineError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		timer.Failed(string(stdErr.Code))
		r.Obs.RecordJobProcessed(ctx, r.TaskType, "failed")
		r.Obs.RecordJobDuration(ctx, r.TaskType, time.Since(start), "failed")

		// The job context may already be expired; commands get their own.
		r.Errors.HandleJobError(context.Background(), client, job, stdErr)
		return
	}

	if err := r.complete(client, job, output); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "COMPLETE_FAILED")
		timer.Failed("COMPLETE_FAILED")
		r.Logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	timer.Succeeded()
	r.Obs.RecordJobProcessed(ctx, r.TaskType, "completed")
	r.Obs.RecordJobDuration(ctx, r.TaskType, time.Since(start), "completed")
}

func (r *JobRuntime) complete(client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}
