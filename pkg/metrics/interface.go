package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus ou Logging sem alterar a lógica de negócio.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// MetricType define os tipos suportados.
type MetricType string

const (
	TypeCount     MetricType = "count"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// MetricDefinition armazena os metadados da métrica (nome real, tipo).
type MetricDefinition struct {
	Name string
	Type MetricType
}

// Identificadores dos eventos do simulador.
const (
	ScenarioResolved  = "scenario_resolved"
	ScenarioUnmatched = "scenario_unmatched"
	ScenarioReload    = "scenario_reload"
	RegistrySize      = "registry_size"
	SynthesisDuration = "synthesis_duration"
)

// DefaultDefinitions liga cada evento ao nome publicado e ao tipo da métrica.
var DefaultDefinitions = map[string]MetricDefinition{
	ScenarioResolved:  {Name: "scenario.resolved", Type: TypeCount},
	ScenarioUnmatched: {Name: "scenario.unmatched", Type: TypeCount},
	ScenarioReload:    {Name: "scenario.reload", Type: TypeCount},
	RegistrySize:      {Name: "scenario.registry.size", Type: TypeGauge},
	SynthesisDuration: {Name: "scenario.synthesis.duration_ms", Type: TypeHistogram},
}
