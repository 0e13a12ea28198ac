package openapi

import (
	"context"
	"fmt"
	"time"

	"github.com/raywall/fast-service-simulator/pkg/metrics"
	"github.com/raywall/fast-service-simulator/pkg/payload"
	"github.com/raywall/fast-service-simulator/pkg/payload/dictionary"
	"github.com/raywall/fast-service-simulator/pkg/rules"
	"github.com/raywall/fast-service-simulator/pkg/scenario"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Loader lê o conteúdo bruto de uma localização (arquivo, URL, s3://, dynamodb://).
type Loader interface {
	Load(ctx context.Context, location string) ([]byte, error)
}

// Synthesizer transforma as operações de uma especificação em cenários roteáveis,
// com regras de validação do corpo recebido e de geração da resposta.
type Synthesizer struct {
	loader      Loader
	rules       *rules.RuleManager
	contextPath string
	inbound     string
	outbound    string
	recorder    *metrics.Recorder
	log         zerolog.Logger
}

// SynthesizerOption customiza o Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithContextPath prefixa todas as rotas sintetizadas.
func WithContextPath(path string) SynthesizerOption {
	return func(s *Synthesizer) { s.contextPath = path }
}

// WithDictionaries informa as localizações dos dicionários de entrada e saída.
// Localizações vazias desabilitam o dicionário correspondente.
func WithDictionaries(inbound, outbound string) SynthesizerOption {
	return func(s *Synthesizer) {
		s.inbound = inbound
		s.outbound = outbound
	}
}

func WithSynthesisRecorder(rec *metrics.Recorder) SynthesizerOption {
	return func(s *Synthesizer) { s.recorder = rec }
}

// NewSynthesizer cria o sintetizador. rm compila os predicados de validação durante a síntese.
func NewSynthesizer(loader Loader, rm *rules.RuleManager, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		loader: loader,
		rules:  rm,
		log:    log.With().Str("component", "synthesizer").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize lê a especificação e devolve um cenário por operação documentada.
// Qualquer falha aborta a síntese inteira; nenhum cenário parcial é devolvido.
func (s *Synthesizer) Synthesize(ctx context.Context, location string) ([]*scenario.Descriptor, error) {
	b := scenario.NewBuilder()
	if err := s.Publish(ctx, location, b); err != nil {
		return nil, err
	}
	return b.Build()
}

// Publish registra os cenários da especificação no sink. Quando o sink aceita definições,
// a instanciação é adiada; caso contrário cada cenário é instanciado e registrado.
// Referências pendentes e nomes duplicados são detectados antes do primeiro registro.
func (s *Synthesizer) Publish(ctx context.Context, location string, sink scenario.Sink) error {
	start := time.Now()
	p, err := s.plan(ctx, location)
	if err != nil {
		return err
	}

	defSink, deferred := sink.(scenario.DefinitionSink)
	for _, def := range p.definitions {
		if deferred {
			err = defSink.Define(def)
		} else {
			var d *scenario.Descriptor
			if d, err = def.New(def); err == nil {
				err = sink.Register(def.ScenarioID, d)
			}
		}
		if err != nil {
			return fmt.Errorf("erro ao publicar cenário '%s': %w", def.ScenarioID, err)
		}
		s.log.Debug().Str("scenario", def.ScenarioID).Str("path", def.Path).Msg("Cenário sintetizado")
	}

	s.recorder.Synthesis(time.Since(start))
	s.log.Info().Str("location", location).Int("scenarios", len(p.definitions)).Msg("Especificação sintetizada")
	return nil
}

// plan lê e valida o documento e monta as definições, sem instanciá-las.
type plan struct {
	doc         *Document
	compiler    *payload.Compiler
	inbound     *dictionary.Dictionary
	outbound    *dictionary.Dictionary
	definitions []scenario.Definition
}

func (s *Synthesizer) plan(ctx context.Context, location string) (*plan, error) {
	data, err := s.loader.Load(ctx, location)
	if err != nil {
		return nil, &UnreadableError{Location: location, Err: err}
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, &UnreadableError{Location: location, Err: err}
	}

	p := &plan{doc: doc, compiler: payload.NewCompiler(doc.Models, s.rules)}
	if p.inbound, err = s.dictionary(ctx, s.inbound); err != nil {
		return nil, err
	}
	if p.outbound, err = s.dictionary(ctx, s.outbound); err != nil {
		return nil, err
	}

	names := map[string]string{}
	for _, op := range doc.Operations {
		name := op.Name()
		if previous, exists := names[name]; exists {
			return nil, fmt.Errorf("%w: '%s' usado por %s e %s %s", scenario.ErrDuplicateScenario, name, previous, op.Method, op.Path)
		}
		names[name] = op.Method + " " + op.Path

		// Referências pendentes falham aqui, antes de qualquer cenário ser publicado.
		if err := p.checkReferences(op); err != nil {
			return nil, fmt.Errorf("operação '%s': %w", name, err)
		}

		p.definitions = append(p.definitions, scenario.Definition{
			Path:               s.contextPath + doc.BasePath + op.Path,
			ScenarioID:         name,
			Spec:               location,
			Operation:          op,
			InboundDictionary:  s.inbound,
			OutboundDictionary: s.outbound,
			New:                p.instantiate,
		})
	}
	return p, nil
}

func (s *Synthesizer) dictionary(ctx context.Context, location string) (*dictionary.Dictionary, error) {
	if location == "" {
		return nil, nil
	}
	data, err := s.loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler dicionário '%s': %w", location, err)
	}
	return dictionary.Parse(data)
}

func (p *plan) checkReferences(op Operation) error {
	if err := p.compiler.CheckReferences(op.RequestBody); err != nil {
		return err
	}
	for _, param := range op.Parameters {
		if err := p.compiler.CheckReferences(param.Schema); err != nil {
			return err
		}
	}
	if _, resp, ok := op.SuccessResponse(); ok {
		return p.compiler.CheckReferences(resp.Schema)
	}
	return nil
}

// instantiate compila as regras da operação e monta o cenário.
func (p *plan) instantiate(def scenario.Definition) (*scenario.Descriptor, error) {
	op, ok := def.Operation.(Operation)
	if !ok {
		return nil, fmt.Errorf("operação inválida na definição '%s'", def.ScenarioID)
	}

	set := &payload.RuleSet{ContentType: defaultContentType}
	if op.RequestBody != nil {
		rule, err := p.compiler.CompileValidation(op.RequestBody)
		if err != nil {
			return nil, err
		}
		set.Request = p.inbound.IgnoreIn(rule)
	}

	set.ResponseStatus = 200
	if code, resp, ok := op.SuccessResponse(); ok {
		set.ResponseStatus = StatusCode(code)
		if resp.ContentType != "" {
			set.ContentType = resp.ContentType
		}
		if resp.Schema != nil {
			rule, err := p.compiler.CompileGeneration(resp.Schema)
			if err != nil {
				return nil, err
			}
			set.Response = rule
		}
	}

	route := scenario.NewRoute().
		Methods(op.Method).
		Path(def.Path).
		QueryParams(op.RequiredParameters("query")...).
		Headers(op.RequiredParameters("header")...)

	d := scenario.New(def.ScenarioID, route, nil)
	d.Generated = true
	d.OperationID = op.OperationID
	d.Source = def.Spec
	d.Rules = set
	d.Inbound = p.inbound
	d.Outbound = p.outbound
	return d, nil
}
