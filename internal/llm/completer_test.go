package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	commonhttp "homelead-workers/internal/common/http"
	"homelead-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fake completions endpoint
// ==========================

type fakeEndpoint struct {
	calls    int32
	statuses []int // status per call; past the end means 200
	text     string
	noChoice bool
	delay    time.Duration
	lastBody map[string]interface{}
}

func (f *fakeEndpoint) serve(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&f.calls, 1))
		if r.URL.Path != "/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)

		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if n <= len(f.statuses) && f.statuses[n-1] != http.StatusOK {
			w.WriteHeader(f.statuses[n-1])
			_, _ = w.Write([]byte(`{"error": {"message": "upstream said no", "type": "server_error"}}`))
			return
		}

		choices := []map[string]interface{}{{"text": f.text, "index": 0, "finish_reason": "stop"}}
		if f.noChoice {
			choices = nil
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "text_completion",
			"model":   "test-model",
			"choices": choices,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestCompleter(t *testing.T, url string, retries int) *OpenAICompleter {
	t.Helper()
	c, err := NewOpenAICompleter(Config{
		BaseURL:    url,
		APIKey:     "test-key",
		Model:      "test-model",
		MaxTokens:  200,
		TopP:       0.7,
		MaxRetries: retries,
	}, commonhttp.NewClient(5*time.Second), logger.NewNoOpLogger())
	require.NoError(t, err)
	return c
}

// ==========================
// OpenAICompleter
// ==========================

func TestComplete_Success(t *testing.T) {
	fe := &fakeEndpoint{text: `{"address": {"$regex": "Mumbai", "$options": "i"}}`}
	srv := fe.serve(t)

	text, err := newTestCompleter(t, srv.URL, 0).Complete(context.Background(), "prompt body")
	require.NoError(t, err)

	assert.Equal(t, fe.text, text)
	assert.Equal(t, "test-model", fe.lastBody["model"])
	assert.Equal(t, "prompt body", fe.lastBody["prompt"])
	assert.Equal(t, float64(200), fe.lastBody["max_tokens"])
	assert.InDelta(t, 0.7, fe.lastBody["top_p"], 0.0001)

	temperature, sent := fe.lastBody["temperature"]
	require.True(t, sent, "zero temperature must still be sent")
	assert.InDelta(t, 0, temperature, 0.000001)
}

func TestComplete_SendsConfiguredTemperature(t *testing.T) {
	fe := &fakeEndpoint{text: "{}"}
	srv := fe.serve(t)

	c := newTestCompleter(t, srv.URL, 0)
	c.config.Temperature = 0.2

	_, err := c.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, fe.lastBody["temperature"], 0.0001)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	fe := &fakeEndpoint{statuses: []int{http.StatusInternalServerError, http.StatusTooManyRequests}, text: "{}"}
	srv := fe.serve(t)

	text, err := newTestCompleter(t, srv.URL, 2).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&fe.calls))
}

func TestComplete_GivesUpAfterRetries(t *testing.T) {
	fe := &fakeEndpoint{statuses: []int{500, 500, 500}}
	srv := fe.serve(t)

	_, err := newTestCompleter(t, srv.URL, 1).Complete(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLLMSynthesisFailed))
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, int32(2), atomic.LoadInt32(&fe.calls))
}

func TestComplete_ClientErrorIsNotRetried(t *testing.T) {
	fe := &fakeEndpoint{statuses: []int{http.StatusUnauthorized}}
	srv := fe.serve(t)

	_, err := newTestCompleter(t, srv.URL, 3).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrLLMSynthesisFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fe.calls))
}

func TestComplete_NoChoices(t *testing.T) {
	fe := &fakeEndpoint{noChoice: true}
	srv := fe.serve(t)

	_, err := newTestCompleter(t, srv.URL, 0).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrLLMSynthesisFailed)
}

func TestComplete_Timeout(t *testing.T) {
	fe := &fakeEndpoint{delay: time.Second, text: "{}"}
	srv := fe.serve(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestCompleter(t, srv.URL, 2).Complete(ctx, "p")
	assert.ErrorIs(t, err, ErrLLMTimeout)
}

func TestNewOpenAICompleter_RequiresKey(t *testing.T) {
	_, err := NewOpenAICompleter(Config{Model: "m"}, nil, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrLLMNotConfigured)
}
