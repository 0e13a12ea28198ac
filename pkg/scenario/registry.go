package scenario

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/raywall/fast-service-simulator/pkg/routing"
)

// Generation é um snapshot imutável e completo dos cenários registrados.
type Generation struct {
	Number uint64

	scenarios []*Descriptor
	ranked    []*Descriptor
	byName    map[string]*Descriptor
}

func newGeneration(number uint64, scenarios []*Descriptor) (*Generation, error) {
	g := &Generation{
		Number:    number,
		scenarios: make([]*Descriptor, 0, len(scenarios)),
		byName:    make(map[string]*Descriptor, len(scenarios)),
	}
	for _, d := range scenarios {
		if d == nil {
			continue
		}
		if _, exists := g.byName[d.Name]; exists {
			return nil, duplicateError(d.Name)
		}
		g.byName[d.Name] = d
		g.scenarios = append(g.scenarios, d)
		if d.Route != nil {
			g.ranked = append(g.ranked, d)
		}
	}

	// Estável: empates preservam a ordem de declaração.
	sort.SliceStable(g.ranked, func(i, j int) bool {
		return routing.ComparePatterns(g.ranked[i].Route.Pattern, g.ranked[j].Route.Pattern) < 0
	})
	return g, nil
}

// Scenarios retorna os cenários na ordem de declaração.
func (g *Generation) Scenarios() []*Descriptor {
	return append([]*Descriptor(nil), g.scenarios...)
}

// Ranked retorna os cenários com roteamento, do mais para o menos específico.
func (g *Generation) Ranked() []*Descriptor {
	return append([]*Descriptor(nil), g.ranked...)
}

// Lookup busca um cenário pelo nome.
func (g *Generation) Lookup(name string) (*Descriptor, bool) {
	d, ok := g.byName[name]
	return d, ok
}

func (g *Generation) Len() int {
	return len(g.scenarios)
}

// Registry mantém a geração corrente. Leituras não usam lock; a publicação de uma nova
// geração é uma troca atômica de ponteiro, então um leitor vê a geração antiga ou a nova
// por inteiro.
type Registry struct {
	current atomic.Pointer[Generation]
	seq     atomic.Uint64

	mu        sync.Mutex
	listeners []func(*Generation)
}

// NewRegistry cria um registro com a geração 0 vazia.
func NewRegistry() *Registry {
	r := &Registry{}
	empty, _ := newGeneration(0, nil)
	r.current.Store(empty)
	return r
}

// Snapshot retorna a geração corrente.
func (r *Registry) Snapshot() *Generation {
	return r.current.Load()
}

// Publish valida e publica uma nova geração. Em caso de erro a geração anterior
// continua visível.
func (r *Registry) Publish(scenarios []*Descriptor) (*Generation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gen, err := newGeneration(r.seq.Load()+1, scenarios)
	if err != nil {
		return nil, err
	}
	r.seq.Store(gen.Number)
	r.current.Store(gen)

	for _, fn := range r.listeners {
		fn(gen)
	}
	return gen, nil
}

// Subscribe registra um callback chamado após cada publicação.
func (r *Registry) Subscribe(fn func(*Generation)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
