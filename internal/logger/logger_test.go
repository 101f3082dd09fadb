package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "debug"},
		{"DEBUG", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"trace", "trace"},
		{"nonsense", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input).String())
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 7}, Int("n", 7))
	assert.Equal(t, Field{Key: "n", Value: int64(7)}, Int64("n", 7))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))

	err := errors.New("boom")
	assert.Equal(t, Field{Key: "error", Value: err}, Error(err))
}

func TestNopLoggerDiscards(t *testing.T) {
	log := Nop()

	// Must not panic regardless of field shape.
	log.Debug("debug", Any("v", struct{ X int }{1}))
	log.Info("info", String("k", "v"))
	log.Warn("warn", Int("n", 1))
	log.Error("error", Error(errors.New("boom")))

	child := log.WithFields(String("component", "test")).WithError(errors.New("boom"))
	child.Info("still fine")
}

func TestWithErrorNil(t *testing.T) {
	log := Nop()
	assert.Equal(t, log, log.WithError(nil))
}
