package parseuserintent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"homelead-workers/internal/common/camunda"
	apperrors "homelead-workers/internal/common/errors"
	"homelead-workers/internal/common/metrics"
	"homelead-workers/internal/llm"
	"homelead-workers/internal/query/synthesizer"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "parse-user-intent"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Completer is implemented by the llm package's completers.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Handler struct {
	config    *Config
	completer Completer
	errors    *apperrors.ErrorHandler
	logger    Logger
}

// NewHandler accepts a nil completer; every job then reports DefaultIntent.
func NewHandler(config *Config, completer Completer, log Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:    config,
		completer: completer,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidUtteranceError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	utterance := strings.TrimSpace(input.Utterance)
	if utterance == "" {
		utterance = strings.TrimSpace(input.Question)
	}
	if utterance == "" {
		return nil, apperrors.NewInvalidUtteranceError("utterance is empty")
	}

	if h.completer == nil {
		return &Output{Intent: DefaultIntent, Entities: []Entity{}}, nil
	}

	raw, err := h.completer.Complete(ctx, BuildPrompt(utterance))
	if err != nil {
		if errors.Is(err, llm.ErrLLMTimeout) {
			return nil, apperrors.NewLLMTimeoutError(h.config.Timeout)
		}
		return nil, apperrors.NewLLMSynthesisFailedError(err)
	}

	output := ParseReply(raw)
	if output.Intent == DefaultIntent && len(output.Entities) == 0 {
		perr := apperrors.NewIntentParsingFailedError(fmt.Errorf("reply not understood: %s", truncate(raw, 200)))
		h.logger.Warn("using default intent", map[string]interface{}{
			"errorCode": perr.Code,
			"error":     perr.Details,
		})
	}

	h.logger.Info("intent parsed successfully", map[string]interface{}{
		"intent":      output.Intent,
		"entityCount": len(output.Entities),
	})
	return output, nil
}

// BuildPrompt asks for the intent and entities of one message as JSON.
func BuildPrompt(utterance string) string {
	return "Extract the intent and entities from the following user message. " +
		`Return as JSON: {"intent": "...", "entities": [{"entity": "...", "value": "..."}]}` + "\n" +
		fmt.Sprintf("Message: %q", utterance)
}

// ParseReply reads the model reply with the same forgiving parse chain the
// filter synthesizer uses. Anything unusable yields DefaultIntent with no
// entities.
func ParseReply(raw string) *Output {
	out := &Output{Intent: DefaultIntent, Entities: []Entity{}}

	obj, ok := synthesizer.ParseObject(raw)
	if !ok {
		return out
	}

	if intent, ok := obj["intent"].(string); ok && strings.TrimSpace(intent) != "" {
		out.Intent = strings.TrimSpace(intent)
	}

	list, _ := obj["entities"].([]interface{})
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["entity"].(string)
		if name == "" {
			continue
		}
		value, ok := m["value"]
		if !ok || value == nil {
			continue
		}
		out.Entities = append(out.Entities, Entity{Entity: name, Value: fmt.Sprint(value)})
	}
	return out
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if _, err := camunda.SendWithRetry(ctx, h.config.Retry, "complete-job", cmd.Send); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey":        job.Key,
			"error":         err.Error(),
			"errorCategory": apperrors.GetErrorCategory(apperrors.CodeOf(err)),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
