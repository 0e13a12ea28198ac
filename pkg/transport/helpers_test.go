package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/raywall/fast-service-simulator/pkg/engine"
	"github.com/raywall/fast-service-simulator/pkg/observability"
	"github.com/raywall/fast-service-simulator/pkg/scenario"
	"github.com/stretchr/testify/require"
)

const petsSpec = `
swagger: "2.0"
info: {title: pets, version: "1"}
basePath: /v1
paths:
  /pets/{id}:
    get:
      operationId: getPet
      parameters:
        - {name: id, in: path, required: true, type: string}
      responses:
        "200":
          description: ok
          schema:
            type: object
            properties:
              name: {type: string, maxLength: 4}
              vaccinated: {type: boolean}
`

type memoryDocs map[string]string

func (m memoryDocs) Load(_ context.Context, location string) ([]byte, error) {
	data, ok := m[location]
	if !ok {
		return nil, errors.New("não encontrado: " + location)
	}
	return []byte(data), nil
}

func newTestSimulator(t *testing.T) *engine.SimulatorEngine {
	t.Helper()
	cfg := &config.SimulatorConfig{
		Simulator: config.SimulatorConf{
			DefaultScenario:   "default",
			UseDefaultMapping: false,
			Swagger:           config.SwaggerConf{API: "pets.yaml"},
			Scenarios: []config.ScenarioConf{
				{
					Name:        "expandIssues",
					Methods:     []string{"GET"},
					Path:        "/issues/{name}",
					QueryParams: []string{"expand"},
					Response:    config.ResponseConf{Status: 206, Body: map[string]interface{}{"expanded": true}},
				},
				{
					Name:     "listIssues",
					Methods:  []string{"GET"},
					Path:     "/issues/{name}",
					Response: config.ResponseConf{Status: 200, Body: []interface{}{"a", "b"}},
				},
			},
		},
		Server:  config.ServerConf{Runtime: "local", Port: 8080, NotFoundStatus: 501},
		Logging: config.LoggingConf{Enabled: false, Level: "info", Format: "json"},
	}

	sim, err := engine.NewSimulatorEngine(context.Background(), cfg, "",
		engine.WithDocumentLoader(memoryDocs{"pets.yaml": petsSpec}),
		engine.WithMetricsProvider(&observability.NoopProvider{}),
	)
	require.NoError(t, err)
	return sim
}

// failingSimulator falha em todas as operações.
type failingSimulator struct {
	gen *scenario.Generation
}

func (f *failingSimulator) Execute(ctx context.Context, req scenario.Request) (*engine.Result, error) {
	return nil, errors.New("boom")
}

func (f *failingSimulator) Shutdown(ctx context.Context) error { return nil }

func (f *failingSimulator) Reload(ctx context.Context) error { return errors.New("spec inválida") }

func (f *failingSimulator) Snapshot() *scenario.Generation { return f.gen }

func newFailingSimulator(t *testing.T) *failingSimulator {
	gen, err := scenario.NewRegistry().Publish(nil)
	require.NoError(t, err)
	return &failingSimulator{gen: gen}
}
