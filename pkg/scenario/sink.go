package scenario

import "fmt"

// Sink recebe cenários já instanciados.
type Sink interface {
	Register(name string, d *Descriptor) error
}

// DefinitionSink recebe definições com instanciação adiada. Quem publica cenários deve
// preferir esta forma quando o destino a suportar.
type DefinitionSink interface {
	Sink
	Define(def Definition) error
}

// Definition é a forma adiada de um cenário sintetizado. Os quatro primeiros campos são
// os parâmetros de construção, na ordem em que são passados a New.
type Definition struct {
	Path       string
	ScenarioID string
	Spec       string
	Operation  interface{}

	// Referências opcionais aos dicionários de dados.
	InboundDictionary  string
	OutboundDictionary string

	New func(Definition) (*Descriptor, error)
}

// Builder acumula cenários para uma nova geração, na ordem de registro.
// Implementa Sink e DefinitionSink.
type Builder struct {
	entries []builderEntry
	names   map[string]struct{}
}

type builderEntry struct {
	descriptor *Descriptor
	definition *Definition
}

func NewBuilder() *Builder {
	return &Builder{names: make(map[string]struct{})}
}

// Register adiciona um cenário instanciado.
func (b *Builder) Register(name string, d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("cenário '%s' nulo", name)
	}
	if d.Name == "" {
		d.Name = name
	}
	if d.Name != name {
		return fmt.Errorf("cenário registrado como '%s' mas se chama '%s'", name, d.Name)
	}
	if err := b.reserve(name); err != nil {
		return err
	}
	b.entries = append(b.entries, builderEntry{descriptor: d})
	return nil
}

// Define adiciona uma definição a ser instanciada em Build.
func (b *Builder) Define(def Definition) error {
	if def.New == nil {
		return fmt.Errorf("definição '%s' sem construtor", def.ScenarioID)
	}
	if err := b.reserve(def.ScenarioID); err != nil {
		return err
	}
	b.entries = append(b.entries, builderEntry{definition: &def})
	return nil
}

func (b *Builder) reserve(name string) error {
	if name == "" {
		return fmt.Errorf("nome de cenário vazio")
	}
	if _, exists := b.names[name]; exists {
		return duplicateError(name)
	}
	b.names[name] = struct{}{}
	return nil
}

// Len retorna a quantidade de cenários acumulados.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Build instancia as definições e devolve os cenários na ordem de registro.
func (b *Builder) Build() ([]*Descriptor, error) {
	out := make([]*Descriptor, 0, len(b.entries))
	for _, e := range b.entries {
		if e.descriptor != nil {
			out = append(out, e.descriptor)
			continue
		}
		d, err := e.definition.New(*e.definition)
		if err != nil {
			return nil, fmt.Errorf("erro ao instanciar cenário '%s': %w", e.definition.ScenarioID, err)
		}
		if d.Name != e.definition.ScenarioID {
			return nil, fmt.Errorf("definição '%s' produziu cenário '%s'", e.definition.ScenarioID, d.Name)
		}
		out = append(out, d)
	}
	return out, nil
}
