// Package synthesizer turns an utterance into a candidate filter, first by
// asking a language model and otherwise by keyword extraction.
package synthesizer

import (
	"context"

	"homelead-workers/internal/common/logger"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/filter"
)

// Completer is the text-in, text-out language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Reasons the model path was skipped.
const (
	ReasonNotConfigured = "llm_not_configured"
	ReasonLLMError      = "llm_error"
	ReasonUnparseable   = "unparseable"
	ReasonEmptyFilter   = "empty_filter"
)

type Result struct {
	Filter filter.Filter
	Path   models.SynthesisPath
	Reason string
}

type Synthesizer struct {
	completer Completer
	logger    logger.Logger
}

// New returns a Synthesizer. A nil completer means every turn uses the
// keyword extractor.
func New(completer Completer, log logger.Logger) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		logger:    log.With(map[string]interface{}{"component": "synthesizer"}),
	}
}

// Synthesize never fails. Model errors, unparseable replies and empty
// model filters all fall back to Extract.
func (s *Synthesizer) Synthesize(ctx context.Context, utterance string, collection models.Collection, fields []string) Result {
	reason := ReasonNotConfigured

	if s.completer != nil {
		text, err := s.completer.Complete(ctx, BuildPrompt(utterance, collection, fields))
		switch {
		case err != nil:
			reason = ReasonLLMError
			s.logger.Warn("completion failed, using fallback", map[string]interface{}{
				"collection": collection,
				"error":      err.Error(),
			})
		default:
			f, ok := ParseCompletion(text)
			switch {
			case !ok:
				reason = ReasonUnparseable
				s.logger.Info("completion unparseable, using fallback", map[string]interface{}{
					"collection": collection,
					"completion": text,
				})
			case f.IsEmpty():
				reason = ReasonEmptyFilter
			default:
				return Result{Filter: f, Path: models.SynthesisLLM}
			}
		}
	}

	return Result{
		Filter: Extract(utterance),
		Path:   models.SynthesisFallback,
		Reason: reason,
	}
}
