// Package pipeline resolves one utterance end to end: classify, synthesize,
// validate, execute, format.
package pipeline

import (
	"context"
	"time"

	"homelead-workers/internal/audit"
	"homelead-workers/internal/common/logger"
	"homelead-workers/internal/common/metrics"
	"homelead-workers/internal/common/observability"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/classifier"
	"homelead-workers/internal/query/executor"
	"homelead-workers/internal/query/filter"
	"homelead-workers/internal/query/formatter"
	"homelead-workers/internal/query/synthesizer"
	"homelead-workers/internal/query/validator"
	"homelead-workers/pkg/registry"

	"go.opentelemetry.io/otel/attribute"
)

// Auditor persists one entry per turn. Implemented by *audit.Recorder.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

type Options struct {
	Registry      *registry.Registry
	Completer     synthesizer.Completer // nil: fallback extraction only
	Store         executor.Store
	Auditor       Auditor // optional
	Observability *observability.Observability
	DefaultLimit  int
	DisplayLimit  int
	Logger        logger.Logger
}

type Request struct {
	Utterance string
	Hint      models.Collection
	RequestID string
}

type Result struct {
	Reply          string
	Collection     models.Collection
	Rule           classifier.Rule
	Filter         filter.Filter
	SynthesisPath  models.SynthesisPath
	FallbackReason string
	Rejected       []string
	Mode           models.QueryMode
	Limit          int64
	ResultCount    int
	Outcome        models.Outcome
	// Err is the store failure behind OutcomeStoreError. It never reaches
	// Reply.
	Err error
}

type Pipeline struct {
	registry     *registry.Registry
	classifier   *classifier.Classifier
	synthesizer  *synthesizer.Synthesizer
	executor     *executor.Executor
	formatter    *formatter.Formatter
	auditor      Auditor
	obs          *observability.Observability
	defaultLimit int64
	logger       logger.Logger
}

func New(opts Options) *Pipeline {
	reg := opts.Registry
	if reg == nil {
		reg = registry.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	defaultLimit := opts.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 10
	}

	return &Pipeline{
		registry:     reg,
		classifier:   classifier.New(reg),
		synthesizer:  synthesizer.New(opts.Completer, log),
		executor:     executor.New(opts.Store, log),
		formatter:    formatter.New(opts.DisplayLimit),
		auditor:      opts.Auditor,
		obs:          opts.Observability,
		defaultLimit: int64(defaultLimit),
		logger:       log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// Resolve never fails: store errors become the fixed apology reply with
// OutcomeStoreError.
func (p *Pipeline) Resolve(ctx context.Context, req Request) Result {
	start := time.Now()
	ctx, span := p.obs.StartSpan(ctx, "query.resolve")

	res := p.resolve(ctx, req)

	span.SetAttributes(
		attribute.String("query.collection", string(res.Collection)),
		attribute.String("query.synthesis_path", string(res.SynthesisPath)),
		attribute.String("query.mode", string(res.Mode)),
		attribute.String("query.outcome", string(res.Outcome)),
		attribute.Int("query.result_count", res.ResultCount),
	)
	observability.EndSpan(span, res.Err)

	metrics.QueryRequests.WithLabelValues(string(res.Collection), string(res.Mode)).Inc()
	p.audit(ctx, req, res, time.Since(start))

	p.logger.Info("Utterance resolved", map[string]interface{}{
		"requestId":     req.RequestID,
		"collection":    res.Collection,
		"synthesisPath": res.SynthesisPath,
		"mode":          res.Mode,
		"limit":         res.Limit,
		"resultCount":   res.ResultCount,
		"outcome":       res.Outcome,
		"durationMs":    time.Since(start).Milliseconds(),
	})
	return res
}

func (p *Pipeline) resolve(ctx context.Context, req Request) Result {
	var res Result

	_, span := p.obs.StartSpan(ctx, "query.classify")
	cls := p.classifier.Classify(req.Utterance, req.Hint)
	span.SetAttributes(attribute.String("query.collection", string(cls.Collection)), attribute.String("query.rule", string(cls.Rule)))
	span.End()

	res.Collection, res.Rule = cls.Collection, cls.Rule
	p.logger.Debug("Collection selected", map[string]interface{}{
		"collection": cls.Collection,
		"rule":       cls.Rule,
		"scores":     cls.Scores,
	})

	allowed := p.registry.AllowedFields(cls.Collection)

	synthCtx, span := p.obs.StartSpan(ctx, "query.synthesize")
	syn := p.synthesizer.Synthesize(synthCtx, req.Utterance, cls.Collection, allowed)
	span.SetAttributes(attribute.String("query.synthesis_path", string(syn.Path)))
	span.End()

	res.SynthesisPath, res.FallbackReason = syn.Path, syn.Reason
	metrics.QuerySynthesis.WithLabelValues(string(syn.Path)).Inc()
	p.logger.Debug("Filter synthesized", map[string]interface{}{
		"path":   syn.Path,
		"reason": syn.Reason,
		"filter": syn.Filter.String(),
	})

	checked := validator.Validate(syn.Filter, allowed)
	res.Filter, res.Rejected = checked.Filter, checked.Rejected
	if checked.Reset() {
		metrics.QueryFilterRejected.WithLabelValues(string(cls.Collection)).Inc()
		p.logger.Warn("Filter fields outside allow-list", map[string]interface{}{
			"collection": cls.Collection,
			"rejected":   checked.Rejected,
			"filter":     checked.Filter.String(),
		})
	}

	plan := executor.Decide(req.Utterance, cls.Collection, p.defaultLimit)
	res.Mode, res.Limit = plan.Mode, plan.Limit

	execCtx, span := p.obs.StartSpan(ctx, "query.execute",
		attribute.String("query.mode", string(plan.Mode)),
		attribute.Int64("query.limit", plan.Limit),
	)
	out, err := p.executor.Execute(execCtx, cls.Collection, res.Filter, plan)
	observability.EndSpan(span, err)

	if err != nil {
		res.Err = err
		res.Outcome = models.OutcomeStoreError
		res.Reply = formatter.StoreErrorReply
		p.logger.Error("Store query failed", map[string]interface{}{
			"collection": cls.Collection,
			"error":      err.Error(),
		})
		return res
	}

	if out.Stats != nil {
		res.ResultCount = int(out.Stats.Count)
	} else {
		res.ResultCount = len(out.Records)
	}

	reply := p.formatter.Format(cls.Collection, out)
	res.Reply, res.Outcome = reply.Text, reply.Outcome
	return res
}

func (p *Pipeline) audit(ctx context.Context, req Request, res Result, elapsed time.Duration) {
	if p.auditor == nil {
		return
	}
	err := p.auditor.Record(ctx, audit.Entry{
		RequestID:     req.RequestID,
		Utterance:     req.Utterance,
		Collection:    string(res.Collection),
		Filter:        res.Filter.String(),
		SynthesisPath: string(res.SynthesisPath),
		Mode:          string(res.Mode),
		Limit:         res.Limit,
		ResultCount:   res.ResultCount,
		Outcome:       string(res.Outcome),
		Duration:      elapsed,
	})
	if err != nil {
		p.logger.Warn("Audit write failed", map[string]interface{}{
			"requestId": req.RequestID,
			"error":     err.Error(),
		})
	}
}
