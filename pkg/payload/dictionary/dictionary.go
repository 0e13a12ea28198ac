// Package dictionary aplica dicionários de dados aos payloads dos cenários sintetizados.
//
// Um dicionário é um mapa plano {"caminho.do.campo": valor}. O dicionário de saída
// sobrescreve campos das respostas geradas; o de entrada marca campos cujo conteúdo
// não deve ser validado.
package dictionary

import (
	"fmt"
	"sort"

	"github.com/raywall/fast-service-simulator/pkg/payload"
	"gopkg.in/yaml.v3"
)

type entry struct {
	path     string
	segments []segment
	value    interface{}
}

// Dictionary é imutável após a criação e seguro para uso concorrente.
type Dictionary struct {
	entries []entry
}

// Parse lê um dicionário em JSON ou YAML.
func Parse(data []byte) (*Dictionary, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dicionário inválido: %w", err)
	}
	return New(raw)
}

// New cria o dicionário a partir de pares caminho/valor. Os caminhos são aplicados em
// ordem lexicográfica, então um caminho mais profundo sobrescreve o objeto do seu prefixo.
func New(values map[string]interface{}) (*Dictionary, error) {
	d := &Dictionary{entries: make([]entry, 0, len(values))}
	for path, value := range values {
		segments, err := parsePath(path)
		if err != nil {
			return nil, err
		}
		d.entries = append(d.entries, entry{path: path, segments: segments, value: sanitize(value)})
	}
	sort.Slice(d.entries, func(i, j int) bool { return d.entries[i].path < d.entries[j].path })
	return d, nil
}

// Len retorna a quantidade de caminhos. Dicionário nil tem zero caminhos.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Paths lista os caminhos em ordem.
func (d *Dictionary) Paths() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.path
	}
	return out
}

// Lookup retorna o valor configurado para o caminho.
func (d *Dictionary) Lookup(path string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	for _, e := range d.entries {
		if e.path == path {
			return e.value, true
		}
	}
	return nil, false
}

// Apply grava os valores do dicionário no payload, criando objetos intermediários quando
// ausentes. Índices de array só são aplicados a posições existentes.
func (d *Dictionary) Apply(value interface{}) interface{} {
	if d == nil {
		return value
	}
	for _, e := range d.entries {
		value = set(value, e.segments, e.value)
	}
	return value
}

func set(current interface{}, segments []segment, value interface{}) interface{} {
	if len(segments) == 0 {
		return deepCopy(value)
	}
	seg := segments[0]

	if seg.isIndex {
		arr, ok := current.([]interface{})
		if !ok || seg.index >= len(arr) {
			return current
		}
		arr[seg.index] = set(arr[seg.index], segments[1:], value)
		return arr
	}

	obj, ok := current.(map[string]interface{})
	if !ok {
		obj = map[string]interface{}{}
	}
	obj[seg.field] = set(obj[seg.field], segments[1:], value)
	return obj
}

// IgnoreIn devolve uma cópia da regra de validação em que cada caminho do dicionário vira
// "ignore". Caminhos que não existem na regra são desconsiderados. Apenas os nós do
// caminho são copiados; o restante da árvore é compartilhado com a regra original.
func (d *Dictionary) IgnoreIn(rule *payload.RuleExpr) *payload.RuleExpr {
	if d == nil || rule == nil {
		return rule
	}
	out := rule
	for _, e := range d.entries {
		out = ignoreAt(out, e.segments)
	}
	return out
}

func ignoreAt(rule *payload.RuleExpr, segments []segment) *payload.RuleExpr {
	if rule == nil {
		return nil
	}
	if len(segments) == 0 {
		return &payload.RuleExpr{Kind: payload.RuleIgnore}
	}

	seg := segments[0]
	switch {
	case seg.isIndex && rule.Kind == payload.RuleArray:
		c := *rule
		c.Items = ignoreAt(rule.Items, segments[1:])
		return &c
	case !seg.isIndex && rule.Kind == payload.RuleObject:
		c := *rule
		c.Fields = make([]payload.FieldRule, len(rule.Fields))
		copy(c.Fields, rule.Fields)
		for i := range c.Fields {
			if c.Fields[i].Name == seg.field {
				c.Fields[i].Rule = ignoreAt(c.Fields[i].Rule, segments[1:])
			}
		}
		return &c
	}
	return rule
}

func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

// sanitize converte mapas com chave interface{} em map[string]interface{}, formato
// aceito pelo encoder JSON.
func sanitize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = sanitize(val)
		}
		return out
	case map[string]interface{}:
		for k, val := range t {
			t[k] = sanitize(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = sanitize(val)
		}
		return t
	default:
		return v
	}
}
