package resolvedataquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"homelead-workers/internal/common/camunda"
	apperrors "homelead-workers/internal/common/errors"
	"homelead-workers/internal/common/metrics"
	"homelead-workers/internal/common/observability"
	"homelead-workers/internal/common/validation"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "resolve-data-query"
)

var schema = validation.MustCompile(inputSchema)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Resolver is implemented by *pipeline.Pipeline.
type Resolver interface {
	Resolve(ctx context.Context, req pipeline.Request) pipeline.Result
}

type Handler struct {
	config   *Config
	resolver Resolver
	obs      *observability.Observability
	errors   *apperrors.ErrorHandler
	logger   Logger
}

func NewHandler(config *Config, resolver Resolver, obs *observability.Observability, log Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:   config,
		resolver: resolver,
		obs:      obs,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, "job."+TaskType, attribute.Int64("job.key", job.Key))

	output, err := h.handle(ctx, job)
	observability.EndSpan(span, err)

	status := "completed"
	if err != nil {
		status = "failed"
	}
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), status)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) handle(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := parseInput(job.Variables)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, input, strconv.FormatInt(job.Key, 10))
}

// parseInput checks the variables against the input schema before decoding
// them.
func parseInput(variables string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, apperrors.NewInvalidUtteranceError(fmt.Sprintf("parse input: %v", err))
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return nil, apperrors.NewInvalidUtteranceError(err.Error())
	}
	if !result.Valid {
		e := apperrors.NewInvalidUtteranceError(strings.Join(result.GetErrorMessages(), "; "))
		if fields := invalidFields(result); len(fields) > 0 {
			e.WithMetadata("invalidFields", fields)
		}
		return nil, e
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidUtteranceError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

// invalidFields names the input variables that failed the schema. Entity
// errors are reported per item, e.g. entities.0.value.
func invalidFields(result *validation.ValidationResult) []string {
	var fields []string
	for _, f := range []string{"utterance", "question", "intent"} {
		if result.HasErrors(f) {
			fields = append(fields, f)
		}
	}
	for _, e := range result.GetErrorsForField("entities") {
		fields = append(fields, e.Field)
	}
	return fields
}

func (h *Handler) execute(ctx context.Context, input *Input, requestID string) (*Output, error) {
	utterance := strings.TrimSpace(input.Utterance)
	if utterance == "" {
		utterance = strings.TrimSpace(input.Question)
	}
	if utterance == "" {
		return nil, apperrors.NewInvalidUtteranceError("utterance is empty")
	}

	res := h.resolver.Resolve(ctx, pipeline.Request{
		Utterance: utterance,
		Hint:      hintCollection(input),
		RequestID: requestID,
	})

	f := map[string]interface{}{}
	for k, v := range res.Filter {
		f[k] = v
	}

	output := &Output{
		Reply:         res.Reply,
		Collection:    string(res.Collection),
		Filter:        f,
		SynthesisPath: string(res.SynthesisPath),
		Mode:          string(res.Mode),
		Limit:         res.Limit,
		ResultCount:   res.ResultCount,
		Outcome:       string(res.Outcome),
	}

	h.logger.Info("utterance resolved", map[string]interface{}{
		"requestId":   requestID,
		"collection":  output.Collection,
		"outcome":     output.Outcome,
		"resultCount": output.ResultCount,
	})

	return output, nil
}

// hintCollection picks a collection out of the upstream entities: an entity
// named "collection" first, then any value that names a collection.
func hintCollection(input *Input) models.Collection {
	for _, e := range input.Entities {
		if strings.EqualFold(e.Entity, "collection") {
			if c, ok := models.ParseCollection(e.Value); ok {
				return c
			}
		}
	}
	for _, e := range input.Entities {
		if c, ok := models.ParseCollection(e.Value); ok {
			return c
		}
	}
	return ""
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if _, err := camunda.SendWithRetry(ctx, h.config.Retry, "complete-job", cmd.Send); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey":        job.Key,
			"error":         err.Error(),
			"errorCategory": apperrors.GetErrorCategory(apperrors.CodeOf(err)),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input, "")
}
