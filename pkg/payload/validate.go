package payload

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/raywall/fast-service-simulator/pkg/rules"
)

// Violation descreve um campo do payload que não satisfaz sua regra.
type Violation struct {
	Path    string   `json:"path"`
	Rule    RuleKind `json:"rule"`
	Message string   `json:"message"`
}

// Validator avalia regras de validação contra payloads decodificados.
type Validator struct {
	rules *rules.RuleManager
}

// NewValidator cria um validador que avalia os predicados CEL com o RuleManager informado.
func NewValidator(rm *rules.RuleManager) *Validator {
	return &Validator{rules: rm}
}

// ValidateJSON decodifica o corpo e o valida. Corpo vazio é tratado como null.
func (v *Validator) ValidateJSON(rule *RuleExpr, body []byte) ([]Violation, error) {
	var value interface{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &value); err != nil {
			return nil, fmt.Errorf("corpo JSON inválido: %w", err)
		}
	}
	return v.Validate(rule, value), nil
}

// Validate percorre a regra e o valor em paralelo, acumulando as violações encontradas.
func (v *Validator) Validate(rule *RuleExpr, value interface{}) []Violation {
	var violations []Violation
	v.walk(rule, value, "$", &violations)
	return violations
}

func (v *Validator) walk(rule *RuleExpr, value interface{}, path string, out *[]Violation) {
	if rule == nil || rule.Kind == RuleIgnore {
		return
	}

	if rule.Kind == RuleObject {
		obj, ok := value.(map[string]interface{})
		if !ok {
			*out = append(*out, Violation{Path: path, Rule: RuleObject, Message: fmt.Sprintf("esperado objeto, encontrado %T", value)})
			return
		}
		for _, f := range rule.Fields {
			fieldPath := path + "." + f.Name
			fieldValue, exists := obj[f.Name]
			if !exists {
				if f.Required && f.Rule != nil && f.Rule.Kind != RuleIgnore {
					*out = append(*out, Violation{Path: fieldPath, Rule: f.Rule.Kind, Message: "campo obrigatório ausente"})
				}
				continue
			}
			v.walk(f.Rule, fieldValue, fieldPath, out)
		}
		return
	}

	ok, err := v.rules.EvaluateBool(rule.Expr, map[string]interface{}{
		rules.VarValue: value,
		"path":         path,
	})
	switch {
	case err != nil:
		*out = append(*out, Violation{Path: path, Rule: rule.Kind, Message: err.Error()})
	case !ok:
		*out = append(*out, Violation{Path: path, Rule: rule.Kind, Message: fmt.Sprintf("valor %v não satisfaz %s", value, rule.Kind)})
	}
}
