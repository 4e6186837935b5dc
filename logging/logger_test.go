package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewAndWith(t *testing.T) {
	log, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)

	child := log.With(String("component", "test"))
	require.NotNil(t, child)
	child.Info("hello", Int("n", 1), Bool("degraded", false))
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	log.Error("ignored", Err(assert.AnError))
	assert.NoError(t, log.Sync())
}
