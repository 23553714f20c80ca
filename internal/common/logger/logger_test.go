package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.in))
		})
	}
}

func TestZapAdapter_FieldsAndChildren(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	child := log.With(map[string]interface{}{"taskType": "resolve-data-query"})
	child.Info("collection selected", map[string]interface{}{"collection": "brokers"})
	child.WithError(errors.New("boom")).Error("store failed", nil)
	log.Debug("no fields", nil)

	entries := logs.All()
	assert.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "resolve-data-query", first["taskType"])
	assert.Equal(t, "brokers", first["collection"])

	second := entries[1].ContextMap()
	assert.Equal(t, "boom", second["error"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	assert.Empty(t, entries[2].ContextMap())
}

func TestNewWithOutput_Builds(t *testing.T) {
	l := NewWithOutput("debug", "json", "stderr")
	assert.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l = New("error", "console")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestNoOpAndTestLoggers(t *testing.T) {
	NewNoOpLogger().WithFields(map[string]interface{}{"a": 1}).Warn("ignored", nil)
	NewTestLogger(t).Info("visible in test output", map[string]interface{}{"k": "v"})
}
