package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	t.Run("Default Level Info", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("Custom Level Debug", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true, Level: "DEBUG"})
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("Invalid Level Falls Back To Info", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true, Level: "verbose"})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("JSON Output Carries Service", func(t *testing.T) {
		var buf bytes.Buffer
		logger := configure(config.LoggingConf{Enabled: true, Level: "info", Format: "json"}, &buf)
		logger.Info().Msg("teste")

		assert.Contains(t, buf.String(), `"service":"fast-service-simulator"`)
		assert.Contains(t, buf.String(), `"message":"teste"`)
	})

	t.Run("Disabled Logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := configure(config.LoggingConf{Enabled: false}, &buf)
		logger.Info().Msg("teste")
		assert.Empty(t, buf.String())
	})
}

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationID(ctx))

	ctx = WithCorrelationID(ctx, "abc-123")
	require.Equal(t, "abc-123", CorrelationID(ctx))

	var buf bytes.Buffer
	base := zerolog.New(&buf)
	logger := FromContext(ctx, base)
	logger.Info().Msg("req")
	assert.Contains(t, buf.String(), `"correlation_id":"abc-123"`)

	buf.Reset()
	plain := FromContext(context.Background(), base)
	plain.Info().Msg("req")
	assert.NotContains(t, buf.String(), "correlation_id")
}
