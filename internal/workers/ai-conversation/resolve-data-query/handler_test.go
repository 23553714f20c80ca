// internal/workers/ai-conversation/resolve-data-query/handler_test.go
package resolvedataquery

import (
	"context"
	"errors"
	"testing"
	"time"

	"homelead-workers/internal/common/camunda"
	"homelead-workers/internal/common/config"
	apperrors "homelead-workers/internal/common/errors"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/filter"
	"homelead-workers/internal/query/pipeline"
	"homelead-workers/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{t: l.t, fields: merged}
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 2 * time.Second}
}

func createTestHandler(t *testing.T, resolver Resolver) *Handler {
	if resolver == nil {
		resolver = pipeline.New(pipeline.Options{Store: memory.NewSeeded()})
	}
	return NewHandler(createTestConfig(), resolver, nil, NewTestLogger(t))
}

type recordingResolver struct {
	requests []pipeline.Request
	result   pipeline.Result
}

func (r *recordingResolver) Resolve(_ context.Context, req pipeline.Request) pipeline.Result {
	r.requests = append(r.requests, req)
	return r.result
}

type brokenStore struct{}

func (brokenStore) Find(context.Context, models.Collection, filter.Filter, int64) ([]models.Record, error) {
	return nil, errors.New("server selection timeout")
}

func (brokenStore) Aggregate(context.Context, models.Collection, []map[string]interface{}) ([]models.Record, error) {
	return nil, errors.New("server selection timeout")
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h := createTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{Utterance: "top 5 brokers in Mumbai"})
	require.NoError(t, err)

	assert.Equal(t, "brokers", out.Collection)
	assert.Equal(t, "fallback", out.SynthesisPath)
	assert.Equal(t, "list", out.Mode)
	assert.Equal(t, int64(5), out.Limit)
	assert.Equal(t, 2, out.ResultCount)
	assert.Equal(t, "ok", out.Outcome)
	assert.Equal(t, map[string]interface{}{"address": filter.Regex("Mumbai")}, out.Filter)
	assert.Contains(t, out.Reply, "I found 2 broker(s):")
}

func TestHandler_Execute_Count(t *testing.T) {
	h := createTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{Utterance: "total brokers"})
	require.NoError(t, err)
	assert.Equal(t, "📊 **Total Brokers**: 5", out.Reply)
	assert.Equal(t, "count", out.Mode)
	assert.Equal(t, int64(0), out.Limit)
	assert.Equal(t, map[string]interface{}{}, out.Filter)
}

func TestHandler_Execute_QuestionAlias(t *testing.T) {
	h := createTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{Question: "show lead 38"})
	require.NoError(t, err)
	assert.Equal(t, "leads", out.Collection)
	assert.Contains(t, out.Reply, "Rahul Verma")
}

func TestHandler_Execute_EmptyUtterance(t *testing.T) {
	h := createTestHandler(t, nil)

	for _, input := range []*Input{{}, {Utterance: "   "}, {Utterance: "\n\t"}} {
		out, err := h.Execute(context.Background(), input)
		assert.Nil(t, out)
		require.Error(t, err)

		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInvalidUtterance, stdErr.Code)
		assert.False(t, stdErr.Retryable)
	}
}

func TestHandler_Execute_StoreFailureCompletesWithApology(t *testing.T) {
	h := createTestHandler(t, pipeline.New(pipeline.Options{Store: brokenStore{}}))

	out, err := h.Execute(context.Background(), &Input{Utterance: "show all properties"})
	require.NoError(t, err)
	assert.Equal(t, "store_error", out.Outcome)
	assert.Equal(t, "Sorry, there was an error connecting to the database.", out.Reply)
	assert.NotContains(t, out.Reply, "server selection")
}

func TestHandler_Execute_PassesHintAndRequestID(t *testing.T) {
	resolver := &recordingResolver{result: pipeline.Result{Reply: "ok", Outcome: models.OutcomeOK}}
	h := createTestHandler(t, resolver)

	_, err := h.execute(context.Background(), &Input{
		Utterance: "  Rahul Verma  ",
		Intent:    "search_database",
		Entities:  []Entity{{Entity: "collection", Value: "lead"}},
	}, "2251799813685249")
	require.NoError(t, err)

	require.Len(t, resolver.requests, 1)
	req := resolver.requests[0]
	assert.Equal(t, "Rahul Verma", req.Utterance)
	assert.Equal(t, models.CollectionLeads, req.Hint)
	assert.Equal(t, "2251799813685249", req.RequestID)
}

// ==========================
// Input Handling Tests
// ==========================

func TestHintCollection(t *testing.T) {
	tests := []struct {
		name     string
		entities []Entity
		expected models.Collection
	}{
		{"no entities", nil, ""},
		{"collection entity", []Entity{{Entity: "collection", Value: "Brokers"}}, models.CollectionBrokers},
		{"singular value", []Entity{{Entity: "record_type", Value: "property"}}, models.CollectionProperties},
		{
			"collection entity wins",
			[]Entity{{Entity: "record_type", Value: "land"}, {Entity: "Collection", Value: "projects"}},
			models.CollectionProjects,
		},
		{"unknown collection ignored", []Entity{{Entity: "collection", Value: "franchises"}}, ""},
		{"non-collection values", []Entity{{Entity: "city", Value: "Mumbai"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, hintCollection(&Input{Entities: tt.entities}))
		})
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
		utterance string
		entities  int
	}{
		{name: "utterance only", variables: `{"utterance":"total leads"}`, utterance: "total leads"},
		{
			name:      "with hint",
			variables: `{"utterance":"Rahul","intent":"search_database","entities":[{"entity":"collection","value":"leads"}]}`,
			utterance: "Rahul",
			entities:  1,
		},
		{name: "extra variables tolerated", variables: `{"utterance":"x","sessionId":"s-1"}`, utterance: "x"},
		{name: "question alias", variables: `{"question":"total leads"}`},
		{name: "malformed json", variables: `{"utterance":`, wantErr: true},
		{name: "no utterance", variables: `{"intent":"search_database"}`, wantErr: true},
		{name: "utterance not a string", variables: `{"utterance":42}`, wantErr: true},
		{name: "entity without value", variables: `{"utterance":"x","entities":[{"entity":"collection"}]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := parseInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidUtterance))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.utterance, input.Utterance)
			assert.Len(t, input.Entities, tt.entities)
		})
	}
}

func TestParseInput_ReportsInvalidFields(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		fields    []string
	}{
		{"utterance not a string", `{"utterance":42}`, []string{"utterance"}},
		{"intent and utterance", `{"utterance":false,"intent":7}`, []string{"utterance", "intent"}},
		{"entity without value", `{"utterance":"x","entities":[{"entity":"collection"}]}`, []string{"entities.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseInput(tt.variables)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.fields, stdErr.Metadata["invalidFields"])
		})
	}
}

func TestConfigFrom(t *testing.T) {
	assert.Equal(t, 30*time.Second, ConfigFrom(workerConfig(0)).Timeout)
	assert.Equal(t, 5*time.Second, ConfigFrom(workerConfig(5000)).Timeout)
	assert.Same(t, camunda.DefaultRetryConfig, ConfigFrom(workerConfig(0)).Retry)

	w := workerConfig(0)
	w.MaxRetries = 1
	assert.Equal(t, 1, ConfigFrom(w).Retry.MaxRetries)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_Execute(b *testing.B) {
	h := &Handler{
		config:   createTestConfig(),
		resolver: pipeline.New(pipeline.Options{Store: memory.NewSeeded()}),
		logger:   &nopLogger{},
	}
	input := &Input{Utterance: "properties under 10 lakh"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(context.Background(), input)
	}
}

type nopLogger struct{}

func (n *nopLogger) Info(string, map[string]interface{})  {}
func (n *nopLogger) Warn(string, map[string]interface{})  {}
func (n *nopLogger) Error(string, map[string]interface{}) {}
func (n *nopLogger) With(map[string]interface{}) Logger   { return n }

func workerConfig(timeoutMs int) config.WorkerConfig {
	return config.WorkerConfig{Enabled: true, Timeout: timeoutMs}
}
