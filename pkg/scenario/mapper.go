package scenario

import (
	"github.com/raywall/fast-service-simulator/pkg/metrics"
	"github.com/raywall/fast-service-simulator/pkg/routing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Tier identifica a fase da resolução que produziu o cenário.
type Tier string

const (
	TierExact   Tier = "exact"
	TierPattern Tier = "pattern"
	TierDefault Tier = "default"
)

// DefaultScenarioName é o cenário padrão quando nenhum outro é configurado.
const DefaultScenarioName = "default"

// Resolution é o resultado de uma resolução. Descriptor é nil quando o cenário padrão
// não está registrado na geração.
type Resolution struct {
	Name       string
	Tier       Tier
	Descriptor *Descriptor
	Generation uint64
}

// Mapper resolve requisições para nomes de cenário. Cada chamada lê o snapshot corrente
// do registro, então reloads são observados na chamada seguinte.
type Mapper struct {
	registry        *Registry
	defaultScenario string
	useDefault      bool
	recorder        *metrics.Recorder
	log             zerolog.Logger
}

// Option customiza o Mapper.
type Option func(*Mapper)

// WithDefaultMapping define o cenário padrão e se ele deve ser usado como fallback.
func WithDefaultMapping(name string, enabled bool) Option {
	return func(m *Mapper) {
		if name != "" {
			m.defaultScenario = name
		}
		m.useDefault = enabled
	}
}

// WithRecorder habilita métricas de resolução.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(m *Mapper) { m.recorder = rec }
}

// WithLogger substitui o logger do componente.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Mapper) { m.log = l }
}

// NewMapper cria o mapper com mapeamento padrão habilitado para "default".
func NewMapper(registry *Registry, opts ...Option) *Mapper {
	m := &Mapper{
		registry:        registry,
		defaultScenario: DefaultScenarioName,
		useDefault:      true,
		log:             log.With().Str("component", "scenario_mapper").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve retorna o nome do cenário que deve atender a requisição.
func (m *Mapper) Resolve(req Request) (string, error) {
	res, err := m.ResolveDetailed(req)
	if err != nil {
		return "", err
	}
	return res.Name, nil
}

// ResolveDetailed aplica os três tiers sobre um único snapshot:
//  1. match exato, primeiro na ordem de declaração;
//  2. match por pattern, do mais para o menos específico;
//  3. cenário padrão, ou ErrNoMatchingScenario.
func (m *Mapper) ResolveDetailed(req Request) (Resolution, error) {
	return m.ResolveIn(m.registry.Snapshot(), req)
}

// ResolveIn aplica os tiers sobre a geração informada, em vez da corrente do registro.
func (m *Mapper) ResolveIn(gen *Generation, req Request) (Resolution, error) {

	if d, ok := m.exact(gen, req); ok {
		return m.resolved(gen, d, TierExact), nil
	}

	for _, d := range gen.ranked {
		if routing.Matches(req, d.Route, false) {
			return m.resolved(gen, d, TierPattern), nil
		}
	}

	if m.useDefault {
		d, _ := gen.Lookup(m.defaultScenario)
		m.log.Debug().Str("method", req.Method).Str("path", req.Path).Str("scenario", m.defaultScenario).Msg("Usando cenário padrão")
		m.recorder.Resolved(string(TierDefault))
		return Resolution{Name: m.defaultScenario, Tier: TierDefault, Descriptor: d, Generation: gen.Number}, nil
	}

	m.recorder.Unmatched()
	return Resolution{}, &NoMatchError{Method: req.Method, Path: req.Path}
}

func (m *Mapper) exact(gen *Generation, req Request) (*Descriptor, bool) {
	var found *Descriptor
	for _, d := range gen.scenarios {
		if d.Route == nil || !routing.Matches(req, d.Route, true) {
			continue
		}
		if found == nil {
			found = d
			continue
		}
		// Ambiguidade no tier exato: vence a primeira declaração.
		m.log.Debug().Str("chosen", found.Name).Str("ignored", d.Name).Msg("Match exato ambíguo")
	}
	return found, found != nil
}

func (m *Mapper) resolved(gen *Generation, d *Descriptor, tier Tier) Resolution {
	m.log.Debug().
		Str("scenario", d.Name).
		Str("tier", string(tier)).
		Uint64("generation", gen.Number).
		Msg("Cenário resolvido")
	m.recorder.Resolved(string(tier))
	return Resolution{Name: d.Name, Tier: tier, Descriptor: d, Generation: gen.Number}
}
