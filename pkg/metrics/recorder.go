package metrics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Recorder traduz eventos de resolução e reload em chamadas ao Provider.
// Falhas no envio são apenas logadas: métricas nunca interrompem a resolução.
// Um Recorder nil descarta todos os eventos.
type Recorder struct {
	definitions map[string]MetricDefinition
	provider    Provider
	log         zerolog.Logger
}

// NewRecorder cria o recorder com as definições padrão.
func NewRecorder(provider Provider) *Recorder {
	return &Recorder{
		definitions: DefaultDefinitions,
		provider:    provider,
		log:         log.With().Str("component", "metrics").Logger(),
	}
}

// Resolved registra uma resolução bem sucedida no tier informado.
func (r *Recorder) Resolved(tier string) {
	r.record(ScenarioResolved, 1, "tier:"+tier)
}

// Unmatched registra uma requisição sem cenário.
func (r *Recorder) Unmatched() {
	r.record(ScenarioUnmatched, 1)
}

// Reload registra o resultado de um reload e, em sucesso, o tamanho da nova geração.
func (r *Recorder) Reload(err error, size int) {
	if err != nil {
		r.record(ScenarioReload, 1, "outcome:failure")
		return
	}
	r.record(ScenarioReload, 1, "outcome:success")
	r.record(RegistrySize, float64(size))
}

// Synthesis registra a duração de uma síntese de especificação.
func (r *Recorder) Synthesis(elapsed time.Duration) {
	r.record(SynthesisDuration, float64(elapsed.Milliseconds()))
}

func (r *Recorder) record(id string, value float64, tags ...string) {
	if r == nil || r.provider == nil {
		return
	}
	if err := r.send(id, value, tags); err != nil {
		r.log.Warn().Err(err).Str("metric_id", id).Msg("Falha ao enviar métrica")
	}
}

func (r *Recorder) send(id string, value float64, tags []string) error {
	def, exists := r.definitions[id]
	if !exists {
		return fmt.Errorf("métrica não definida: %s", id)
	}

	switch def.Type {
	case TypeCount:
		return r.provider.Count(def.Name, value, tags)
	case TypeGauge:
		return r.provider.Gauge(def.Name, value, tags)
	case TypeHistogram:
		return r.provider.Histogram(def.Name, value, tags)
	default:
		return fmt.Errorf("tipo de métrica desconhecido: %s", def.Type)
	}
}
