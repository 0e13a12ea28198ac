package payload

import (
	"fmt"

	"github.com/goccy/go-json"
)

// RuleKind identifica a instrução carregada por um RuleExpr.
type RuleKind string

const (
	// Comum a validação e geração
	RuleIgnore RuleKind = "ignore"
	RuleObject RuleKind = "object"

	// Validação
	RuleNotEmpty        RuleKind = "notEmpty"
	RuleDatePattern     RuleKind = "matchesDate"
	RuleDateTimePattern RuleKind = "matchesDateTime"
	RuleRegex           RuleKind = "matchesRegex"
	RuleOneOf           RuleKind = "oneOf"
	RuleNumeric         RuleKind = "numeric"
	RuleBoolean         RuleKind = "boolean"
	RuleArrayShape      RuleKind = "arrayShape"

	// Geração
	RuleCurrentDate      RuleKind = "currentDate"
	RuleCurrentTimestamp RuleKind = "currentTimestamp"
	RuleRandomString     RuleKind = "randomString"
	RuleRandomEnum       RuleKind = "randomEnum"
	RuleRandomNumber     RuleKind = "randomNumber"
	RuleRandomBoolean    RuleKind = "randomBoolean"
	RuleArray            RuleKind = "array"
)

// RuleExpr é uma instrução serializável consumida pelo executor de cenários para validar
// um payload recebido ou sintetizar um payload de resposta. Objetos e arrays são
// representados de forma estruturada (Fields / Items), nunca como texto concatenado.
type RuleExpr struct {
	Kind RuleKind `json:"kind"`

	// Expr é o predicado CEL sobre "value" nas folhas de validação.
	Expr string `json:"expr,omitempty"`

	Pattern string   `json:"pattern,omitempty"`
	Values  []string `json:"values,omitempty"`
	Length  int      `json:"length,omitempty"`
	Integer bool     `json:"integer,omitempty"`

	Items  *RuleExpr   `json:"items,omitempty"`
	Fields []FieldRule `json:"fields,omitempty"`
}

// FieldRule é a regra de uma propriedade de objeto, na ordem de declaração do schema.
type FieldRule struct {
	Name     string    `json:"name"`
	Required bool      `json:"required,omitempty"`
	Rule     *RuleExpr `json:"rule"`
}

// RuleSet reúne as regras compiladas de uma operação documentada.
type RuleSet struct {
	// Request valida o corpo recebido; nil quando a operação não documenta corpo.
	Request *RuleExpr `json:"request,omitempty"`
	// Response gera o corpo de resposta; nil quando não há schema de resposta.
	Response       *RuleExpr `json:"response,omitempty"`
	ResponseStatus int       `json:"response_status"`
	ContentType    string    `json:"content_type,omitempty"`
}

// Field retorna a regra da propriedade nomeada.
func (r *RuleExpr) Field(name string) (*RuleExpr, bool) {
	if r == nil {
		return nil, false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Rule, true
		}
	}
	return nil, false
}

// Template projeta a regra em um valor com formato de payload (mapas e listas), útil para
// inspeção e para a API administrativa. Folhas viram o nome da instrução.
func (r *RuleExpr) Template() interface{} {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case RuleObject:
		out := make(map[string]interface{}, len(r.Fields))
		for _, f := range r.Fields {
			out[f.Name] = f.Rule.Template()
		}
		return out
	case RuleArray:
		return []interface{}{r.Items.Template()}
	default:
		return fmt.Sprintf("@%s@", r.Kind)
	}
}

// Marshal serializa a regra para JSON.
func Marshal(r *RuleExpr) ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal reconstrói uma regra serializada por Marshal.
func Unmarshal(data []byte) (*RuleExpr, error) {
	var r RuleExpr
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("regra serializada inválida: %w", err)
	}
	return &r, nil
}
