package payload

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator executa regras de geração produzindo valores prontos para serialização JSON.
// É seguro para uso concorrente.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// GeneratorOption customiza o Generator.
type GeneratorOption func(*Generator)

// WithSeed fixa a semente dos valores aleatórios (útil em testes).
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) { g.rnd = rand.New(rand.NewSource(seed)) }
}

// WithClock substitui o relógio usado por currentDate/currentTimestamp.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator cria um gerador com semente baseada no relógio.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sintetiza um valor a partir da regra. Regras "ignore" produzem nil e
// campos nil são omitidos dos objetos gerados.
func (g *Generator) Generate(rule *RuleExpr) interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generate(rule)
}

func (g *Generator) generate(rule *RuleExpr) interface{} {
	if rule == nil {
		return nil
	}

	switch rule.Kind {
	case RuleObject:
		out := make(map[string]interface{}, len(rule.Fields))
		for _, f := range rule.Fields {
			if v := g.generate(f.Rule); v != nil {
				out[f.Name] = v
			}
		}
		return out
	case RuleArray:
		item := g.generate(rule.Items)
		if item == nil {
			return []interface{}{}
		}
		return []interface{}{item}
	case RuleCurrentDate:
		return g.now().Format("2006-01-02")
	case RuleCurrentTimestamp:
		return g.now().Format(time.RFC3339)
	case RuleRandomString:
		return g.randomString(rule.Length)
	case RuleRandomEnum:
		if len(rule.Values) == 0 {
			return nil
		}
		return rule.Values[g.rnd.Intn(len(rule.Values))]
	case RuleRandomNumber:
		if rule.Integer {
			return int64(g.rnd.Intn(100000))
		}
		return math.Round(g.rnd.Float64()*1000000) / 100
	case RuleRandomBoolean:
		return g.rnd.Intn(2) == 1
	default:
		return nil
	}
}

func (g *Generator) randomString(length int) string {
	if length <= 0 {
		length = DefaultStringLength
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[g.rnd.Intn(len(alphanumeric))]
	}
	return string(b)
}
