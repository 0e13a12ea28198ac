package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/raywall/fast-service-simulator/pkg/config/injector"
	"github.com/raywall/fast-service-simulator/pkg/logger"
	"github.com/raywall/fast-service-simulator/pkg/metrics"
	"github.com/raywall/fast-service-simulator/pkg/observability"
	"github.com/raywall/fast-service-simulator/pkg/openapi"
	"github.com/raywall/fast-service-simulator/pkg/payload"
	"github.com/raywall/fast-service-simulator/pkg/rules"
	"github.com/raywall/fast-service-simulator/pkg/scenario"
	"github.com/raywall/fast-service-simulator/pkg/source"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json"

// HeaderScenario informa qual cenário atendeu a requisição.
const HeaderScenario = "X-Simulator-Scenario"

// Result é a resposta simulada entregue ao adaptador de transporte.
type Result struct {
	Status   int
	Headers  map[string]string
	Body     []byte
	Scenario string
	Tier     scenario.Tier
}

// state é a unidade publicada por um reload: a geração, o mapper com o cenário padrão e a
// configuração que os produziu.
type state struct {
	cfg    *config.SimulatorConfig
	gen    *scenario.Generation
	mapper *scenario.Mapper
}

// SimulatorEngine mantém o registro de cenários e executa as respostas simuladas.
// Execute lê sempre o state corrente; Reload monta o novo state à parte e o publica
// de uma vez.
type SimulatorEngine struct {
	reloadMu     sync.Mutex
	ConfigSource string
	Logger       zerolog.Logger
	Metrics      observability.Provider
	Recorder     *metrics.Recorder
	RuleManager  *rules.RuleManager
	Registry     *scenario.Registry

	current   atomic.Pointer[state]
	loader    Loader
	documents openapi.Loader
	validator *payload.Validator
	generator *payload.Generator
}

// Option customiza o SimulatorEngine.
type Option func(*SimulatorEngine)

// WithConfigLoader substitui o loader usado no Reload.
func WithConfigLoader(l Loader) Option {
	return func(se *SimulatorEngine) { se.loader = l }
}

// WithDocumentLoader substitui a origem das especificações e dicionários.
func WithDocumentLoader(l openapi.Loader) Option {
	return func(se *SimulatorEngine) { se.documents = l }
}

// WithMetricsProvider ignora a configuração de métricas e usa o provider informado.
func WithMetricsProvider(p observability.Provider) Option {
	return func(se *SimulatorEngine) { se.Metrics = p }
}

// WithGenerator substitui o gerador de payloads (ex: semente fixa em testes).
func WithGenerator(g *payload.Generator) Option {
	return func(se *SimulatorEngine) { se.generator = g }
}

// NewSimulatorEngine prepara o engine e publica a primeira geração de cenários.
// configSource vazio faz o Reload reconstruir a partir da configuração em memória.
func NewSimulatorEngine(ctx context.Context, cfg *config.SimulatorConfig, configSource string, opts ...Option) (*SimulatorEngine, error) {
	log := logger.Configure(cfg.Logging)

	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, fmt.Errorf("falha fatal ao iniciar RuleManager: %w", err)
	}

	docs := source.NewLoader()
	se := &SimulatorEngine{
		ConfigSource: configSource,
		Logger:       log.With().Str("component", "engine").Logger(),
		RuleManager:  rm,
		Registry:     scenario.NewRegistry(),
		loader:       NewUniversalLoader(docs, injector.New()),
		documents:    docs,
		validator:    payload.NewValidator(rm),
		generator:    payload.NewGenerator(),
	}
	for _, opt := range opts {
		opt(se)
	}

	if se.Metrics == nil {
		if se.Metrics, err = observability.SetupMetrics(cfg.Metrics); err != nil {
			return nil, fmt.Errorf("falha métricas: %w", err)
		}
	}
	se.Recorder = metrics.NewRecorder(se.Metrics)

	if err := se.publish(ctx, cfg); err != nil {
		return nil, err
	}
	return se, nil
}

// Reload relê a configuração (e a especificação referenciada) e publica uma nova geração.
// Em qualquer falha a geração corrente permanece intacta.
func (se *SimulatorEngine) Reload(ctx context.Context) error {
	se.reloadMu.Lock()
	defer se.reloadMu.Unlock()

	cfg := se.CurrentConfig()
	if se.ConfigSource != "" {
		se.Logger.Info().Msgf("Hot Reload iniciado. Buscando config em: %s", se.ConfigSource)
		newCfg, err := se.loader.Load(ctx, se.ConfigSource)
		if err != nil {
			se.Recorder.Reload(err, 0)
			return fmt.Errorf("falha ao carregar nova configuração: %w", err)
		}
		cfg = newCfg
	}

	if err := se.publish(ctx, cfg); err != nil {
		return err
	}
	se.Logger.Info().Uint64("generation", se.Snapshot().Number).Msg("Hot Reload concluído com sucesso")
	return nil
}

// publish constrói os cenários de cfg e troca geração, mapper e configuração em uma única
// operação atômica.
func (se *SimulatorEngine) publish(ctx context.Context, cfg *config.SimulatorConfig) error {
	var gen *scenario.Generation
	scenarios, err := buildScenarios(ctx, cfg, se.documents, se.RuleManager, se.Recorder)
	if err == nil {
		gen, err = se.Registry.Publish(scenarios)
	}
	if err != nil {
		se.Recorder.Reload(err, 0)
		se.Logger.Error().Err(err).Msg("Falha ao montar cenários")
		return fmt.Errorf("falha ao montar cenários: %w", err)
	}

	mapper := scenario.NewMapper(se.Registry,
		scenario.WithDefaultMapping(cfg.Simulator.DefaultScenario, cfg.Simulator.UseDefaultMapping),
		scenario.WithRecorder(se.Recorder),
	)

	se.current.Store(&state{cfg: cfg, gen: gen, mapper: mapper})

	se.Recorder.Reload(nil, len(scenarios))
	return nil
}

// buildScenarios registra primeiro os cenários estáticos, na ordem declarada, e depois os
// sintetizados da especificação.
func buildScenarios(ctx context.Context, cfg *config.SimulatorConfig, docs openapi.Loader, rm *rules.RuleManager, rec *metrics.Recorder) ([]*scenario.Descriptor, error) {
	b := scenario.NewBuilder()

	for _, sc := range cfg.Simulator.Scenarios {
		d := scenario.New(sc.Name, routeOf(sc), &scenario.Response{
			Status:  sc.Response.Status,
			Headers: sc.Response.Headers,
			Body:    sc.Response.Body,
		})
		if err := b.Register(sc.Name, d); err != nil {
			return nil, err
		}
	}

	if sw := cfg.Simulator.Swagger; sw.API != "" {
		synth := openapi.NewSynthesizer(docs, rm,
			openapi.WithContextPath(sw.ContextPath),
			openapi.WithDictionaries(sw.InboundDictionary, sw.OutboundDictionary),
			openapi.WithSynthesisRecorder(rec),
		)
		if err := synth.Publish(ctx, sw.API, b); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

// routeOf devolve nil quando o cenário não declara nenhum metadado de roteamento.
func routeOf(sc config.ScenarioConf) *scenario.RouteMetadata {
	if sc.Path == "" && len(sc.Methods) == 0 && len(sc.QueryParams) == 0 && len(sc.Headers) == 0 {
		return nil
	}
	return scenario.NewRoute().
		Path(sc.Path).
		Methods(sc.Methods...).
		QueryParams(sc.QueryParams...).
		Headers(sc.Headers...)
}

// Resolve devolve o nome do cenário que atende a requisição.
func (se *SimulatorEngine) Resolve(req scenario.Request) (string, error) {
	st := se.current.Load()
	res, err := st.mapper.ResolveIn(st.gen, req)
	if err != nil {
		return "", err
	}
	return res.Name, nil
}

// Execute resolve o cenário e monta a resposta: cenários estáticos devolvem a resposta
// declarada; cenários sintetizados validam o corpo recebido e geram o corpo de saída.
func (se *SimulatorEngine) Execute(ctx context.Context, req scenario.Request) (*Result, error) {
	log := logger.FromContext(ctx, se.Logger)
	st := se.current.Load()
	cfg := st.cfg

	res, err := st.mapper.ResolveIn(st.gen, req)
	if err != nil {
		if errors.Is(err, scenario.ErrNoMatchingScenario) {
			log.Info().Str("method", req.Method).Str("path", req.Path).Msg("Nenhum cenário simulado")
			return errorResult(cfg.Server.NotFoundStatus, err.Error(), nil), nil
		}
		return nil, err
	}

	d := res.Descriptor
	if d == nil {
		log.Warn().Str("scenario", res.Name).Msg("Cenário padrão não registrado")
		return errorResult(cfg.Server.NotFoundStatus, fmt.Sprintf("cenário padrão '%s' não registrado", res.Name), nil), nil
	}

	var result *Result
	if d.Generated {
		result, err = se.executeGenerated(d, req)
	} else {
		result, err = executeStatic(d)
	}
	if err != nil {
		log.Error().Err(err).Str("scenario", d.Name).Msg("Erro ao montar resposta")
		return nil, err
	}

	result.Scenario = d.Name
	result.Tier = res.Tier
	result.Headers[HeaderScenario] = d.Name
	return result, nil
}

func executeStatic(d *scenario.Descriptor) (*Result, error) {
	result := &Result{Status: http.StatusOK, Headers: map[string]string{}}
	if d.Response == nil {
		return result, nil
	}
	if d.Response.Status != 0 {
		result.Status = d.Response.Status
	}
	for k, v := range d.Response.Headers {
		result.Headers[k] = v
	}

	switch body := d.Response.Body.(type) {
	case nil:
	case string:
		result.Body = []byte(body)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("corpo da resposta de '%s' não serializável: %w", d.Name, err)
		}
		result.Body = data
		if _, ok := result.Headers["Content-Type"]; !ok {
			result.Headers["Content-Type"] = contentTypeJSON
		}
	}
	return result, nil
}

func (se *SimulatorEngine) executeGenerated(d *scenario.Descriptor, req scenario.Request) (*Result, error) {
	rs := d.Rules
	if rs == nil {
		return &Result{Status: http.StatusOK, Headers: map[string]string{}}, nil
	}

	// Corpo ausente não é validado.
	if rs.Request != nil && len(req.Body) > 0 {
		violations, err := se.validator.ValidateJSON(rs.Request, req.Body)
		if err != nil {
			return errorResult(http.StatusBadRequest, err.Error(), nil), nil
		}
		if len(violations) > 0 {
			return errorResult(http.StatusBadRequest, "payload inválido", violations), nil
		}
	}

	result := &Result{Status: rs.ResponseStatus, Headers: map[string]string{}}
	if result.Status == 0 {
		result.Status = http.StatusOK
	}

	value := d.Outbound.Apply(se.generator.Generate(rs.Response))
	if value == nil {
		return result, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("payload gerado de '%s' não serializável: %w", d.Name, err)
	}
	result.Body = data
	result.Headers["Content-Type"] = rs.ContentType
	return result, nil
}

type errorBody struct {
	Error      string              `json:"error"`
	Violations []payload.Violation `json:"violations,omitempty"`
}

func errorResult(status int, msg string, violations []payload.Violation) *Result {
	body, _ := json.Marshal(errorBody{Error: msg, Violations: violations})
	return &Result{
		Status:  status,
		Headers: map[string]string{"Content-Type": contentTypeJSON},
		Body:    body,
	}
}

// CurrentConfig devolve a configuração da geração corrente.
func (se *SimulatorEngine) CurrentConfig() *config.SimulatorConfig {
	return se.current.Load().cfg
}

// Snapshot devolve a geração publicada junto com a configuração corrente.
func (se *SimulatorEngine) Snapshot() *scenario.Generation {
	return se.current.Load().gen
}

// Shutdown descarrega as métricas pendentes.
func (se *SimulatorEngine) Shutdown(ctx context.Context) error {
	if se.Metrics == nil {
		return nil
	}
	return se.Metrics.Close()
}
