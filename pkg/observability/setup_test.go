package observability

import (
	"testing"

	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMetrics(t *testing.T) {
	t.Run("Disabled returns Noop", func(t *testing.T) {
		provider, err := SetupMetrics(config.MetricsConf{Datadog: config.DatadogConf{Enabled: false}})
		require.NoError(t, err)
		assert.IsType(t, &NoopProvider{}, provider)

		assert.NoError(t, provider.Count("scenario.resolved", 1, nil))
		assert.NoError(t, provider.Gauge("scenario.registry.size", 3, nil))
		assert.NoError(t, provider.Histogram("scenario.synthesis.duration_ms", 12, nil))
		assert.NoError(t, provider.Close())
	})

	t.Run("Enabled returns Datadog", func(t *testing.T) {
		provider, err := SetupMetrics(config.MetricsConf{
			Datadog: config.DatadogConf{Enabled: true, Addr: "localhost:8125", Namespace: "simulator."},
		})
		require.NoError(t, err)
		require.IsType(t, &DatadogProvider{}, provider)

		// UDP não exige agente ativo
		assert.NoError(t, provider.Count("scenario.resolved", 1, []string{"tier:exact"}))
		assert.NoError(t, provider.Close())
	})
}
