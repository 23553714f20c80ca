package synthesizer

import (
	"context"
	"errors"
	"testing"

	"homelead-workers/internal/common/logger"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

var brokerFields = []string{"name", "phone", "address", "commissionPercent", "brokerNo", "id"}

func TestSynthesize_UsesModelFilter(t *testing.T) {
	fc := &fakeCompleter{reply: `{"address": {"$regex": "Mumbai", "$options": "i"}}`}
	s := New(fc, logger.NewTestLogger(t))

	got := s.Synthesize(context.Background(), "brokers in Mumbai", models.CollectionBrokers, brokerFields)

	assert.Equal(t, models.SynthesisLLM, got.Path)
	assert.Empty(t, got.Reason)
	assert.Equal(t, filter.Filter{"address": filter.Regex("Mumbai")}, got.Filter)

	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], `User Question: "brokers in Mumbai"`)
	assert.Contains(t, fc.prompts[0], "Collection: brokers")
	assert.Contains(t, fc.prompts[0], `"commissionPercent"`)
}

func TestSynthesize_FallbackReasons(t *testing.T) {
	tests := []struct {
		name      string
		completer Completer
		reason    string
	}{
		{"no completer", nil, ReasonNotConfigured},
		{"completion error", &fakeCompleter{err: errors.New("503")}, ReasonLLMError},
		{"unparseable", &fakeCompleter{reply: "Sure! Here you go."}, ReasonUnparseable},
		{"empty model filter", &fakeCompleter{reply: "{}"}, ReasonEmptyFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.completer, logger.NewTestLogger(t))
			got := s.Synthesize(context.Background(), "show lead 38", models.CollectionLeads, nil)

			assert.Equal(t, models.SynthesisFallback, got.Path)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, filter.RecordNumber("leadNo", 38), got.Filter)
		})
	}
}

func TestSynthesize_TotalIsEmptyOnEitherPath(t *testing.T) {
	for _, c := range []Completer{nil, &fakeCompleter{reply: "{}"}} {
		got := New(c, logger.NewNoOpLogger()).Synthesize(context.Background(), "total brokers", models.CollectionBrokers, brokerFields)
		assert.True(t, got.Filter.IsEmpty())
	}
}
