package payload

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/raywall/fast-service-simulator/pkg/rules"
)

const (
	// DefaultStringLength é o tamanho gerado quando o schema não limita o texto.
	DefaultStringLength = 10

	datePattern     = `^\d{4}-\d{2}-\d{2}$`
	dateTimePattern = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?$`
	numericPattern  = `^-?\d+(\.\d+)?$`
)

// Expressões CEL das folhas de validação; "value" é o valor do campo.
var (
	exprNotEmpty   = `type(value) != null_type && (type(value) != string || size(value) > 0)`
	exprNumeric    = `type(value) == int || type(value) == uint || type(value) == double || ` + matchesExpr(numericPattern)
	exprBoolean    = `type(value) == bool || (type(value) == string && value in ["true", "false"])`
	exprArrayShape = `type(value) == list`
)

// Compiler converte árvores de SchemaNode em regras de validação e de geração.
type Compiler struct {
	models Models
	rules  *rules.RuleManager
}

// NewCompiler cria o compilador para os modelos de um documento. Com rm != nil, cada
// predicado de validação é compilado em CEL durante a síntese.
func NewCompiler(models Models, rm *rules.RuleManager) *Compiler {
	if models == nil {
		models = Models{}
	}
	return &Compiler{models: models, rules: rm}
}

// CompileValidation gera a regra que valida um payload recebido contra o schema.
func (c *Compiler) CompileValidation(schema *SchemaNode) (*RuleExpr, error) {
	if err := c.CheckReferences(schema); err != nil {
		return nil, err
	}
	rule := c.validation(schema, newExpansion())
	if err := c.checkExpressions(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// CompileGeneration gera a regra que sintetiza um payload de saída para o schema.
func (c *Compiler) CompileGeneration(schema *SchemaNode) (*RuleExpr, error) {
	if err := c.CheckReferences(schema); err != nil {
		return nil, err
	}
	return c.generation(schema, newExpansion()), nil
}

// CheckReferences percorre iterativamente todo o grafo alcançável a partir do schema e
// falha na primeira referência sem modelo. Cada modelo é visitado uma única vez, então
// schemas auto-referenciados terminam.
func (c *Compiler) CheckReferences(schema *SchemaNode) error {
	visited := map[string]bool{}
	pending := []*SchemaNode{schema}

	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if node == nil {
			continue
		}

		switch node.Kind {
		case KindReference:
			name := RefName(node.Ref)
			if visited[name] {
				continue
			}
			model, ok := c.models[name]
			if !ok || model == nil {
				return &ReferenceError{Ref: node.Ref}
			}
			visited[name] = true
			pending = append(pending, model)
		case KindArray:
			pending = append(pending, node.Items)
		case KindObject:
			for _, p := range node.Properties {
				pending = append(pending, p.Schema)
			}
		}
	}
	return nil
}

// expansion guarda o estado de uma compilação. active contém os modelos em expansão no
// caminho atual (reentrar em um deles degrada para "ignore"); done guarda a regra já
// compilada de cada modelo, reutilizada nas demais referências.
type expansion struct {
	active map[string]bool
	done   map[string]*RuleExpr
}

func newExpansion() *expansion {
	return &expansion{active: map[string]bool{}, done: map[string]*RuleExpr{}}
}

// reference compila o modelo referenciado uma única vez por compilação.
func (c *Compiler) reference(node *SchemaNode, exp *expansion, compile func(*SchemaNode, *expansion) *RuleExpr) *RuleExpr {
	name := RefName(node.Ref)
	if rule, ok := exp.done[name]; ok {
		return rule
	}
	if exp.active[name] {
		return ignore()
	}

	exp.active[name] = true
	rule := compile(c.models[name], exp)
	delete(exp.active, name)

	exp.done[name] = rule
	return rule
}

func (c *Compiler) validation(node *SchemaNode, exp *expansion) *RuleExpr {
	if node == nil {
		return ignore()
	}

	switch node.Kind {
	case KindReference:
		return c.reference(node, exp, c.validation)

	case KindArray:
		// Arrays não são validados em profundidade: apenas o formato.
		return &RuleExpr{Kind: RuleArrayShape, Expr: exprArrayShape}

	case KindObject:
		rule := &RuleExpr{Kind: RuleObject, Fields: make([]FieldRule, 0, len(node.Properties))}
		for _, p := range node.Properties {
			rule.Fields = append(rule.Fields, FieldRule{
				Name:     p.Name,
				Required: node.isRequired(p.Name),
				Rule:     c.validation(p.Schema, exp),
			})
		}
		return rule

	case KindPrimitive:
		switch primitiveClass(node.Type) {
		case classString:
			switch {
			case node.Format == "date":
				return &RuleExpr{Kind: RuleDatePattern, Pattern: datePattern, Expr: matchesExpr(datePattern)}
			case node.Format == "date-time":
				return &RuleExpr{Kind: RuleDateTimePattern, Pattern: dateTimePattern, Expr: matchesExpr(dateTimePattern)}
			case node.Pattern != "":
				// Sintaxe fora do RE2 (ex: lookahead) não é avaliável pelo CEL.
				if _, err := regexp.Compile(node.Pattern); err != nil {
					return ignore()
				}
				return &RuleExpr{Kind: RuleRegex, Pattern: node.Pattern, Expr: matchesExpr(node.Pattern)}
			case len(node.Enum) > 0:
				return &RuleExpr{Kind: RuleOneOf, Values: node.Enum, Expr: oneOfExpr(node.Enum)}
			default:
				return &RuleExpr{Kind: RuleNotEmpty, Expr: exprNotEmpty}
			}
		case classNumber:
			return &RuleExpr{Kind: RuleNumeric, Expr: exprNumeric}
		case classBoolean:
			return &RuleExpr{Kind: RuleBoolean, Expr: exprBoolean}
		}
	}

	return ignore()
}

func (c *Compiler) generation(node *SchemaNode, exp *expansion) *RuleExpr {
	if node == nil {
		return ignore()
	}

	switch node.Kind {
	case KindReference:
		return c.reference(node, exp, c.generation)

	case KindArray:
		return &RuleExpr{Kind: RuleArray, Items: c.generation(node.Items, exp)}

	case KindObject:
		rule := &RuleExpr{Kind: RuleObject, Fields: make([]FieldRule, 0, len(node.Properties))}
		for _, p := range node.Properties {
			rule.Fields = append(rule.Fields, FieldRule{
				Name:     p.Name,
				Required: node.isRequired(p.Name),
				Rule:     c.generation(p.Schema, exp),
			})
		}
		return rule

	case KindPrimitive:
		switch primitiveClass(node.Type) {
		case classString:
			switch {
			case node.Format == "date":
				return &RuleExpr{Kind: RuleCurrentDate}
			case node.Format == "date-time":
				return &RuleExpr{Kind: RuleCurrentTimestamp}
			case node.Pattern != "":
				// Geração guiada pela regex não é suportada; usa texto aleatório.
				return &RuleExpr{Kind: RuleRandomString, Length: stringLength(node), Pattern: node.Pattern}
			case len(node.Enum) > 0:
				return &RuleExpr{Kind: RuleRandomEnum, Values: node.Enum}
			default:
				return &RuleExpr{Kind: RuleRandomString, Length: stringLength(node)}
			}
		case classNumber:
			return &RuleExpr{Kind: RuleRandomNumber, Integer: isIntegerType(node.Type)}
		case classBoolean:
			return &RuleExpr{Kind: RuleRandomBoolean}
		}
	}

	return ignore()
}

// checkExpressions compila cada predicado da árvore, falhando na síntese e não na requisição.
// Subárvores de modelos compartilhados são verificadas uma única vez.
func (c *Compiler) checkExpressions(rule *RuleExpr) error {
	if c.rules == nil {
		return nil
	}
	return c.checkTree(rule, map[*RuleExpr]bool{})
}

func (c *Compiler) checkTree(rule *RuleExpr, seen map[*RuleExpr]bool) error {
	if rule == nil || seen[rule] {
		return nil
	}
	seen[rule] = true

	if rule.Expr != "" {
		if err := c.rules.Check(rule.Expr); err != nil {
			return fmt.Errorf("regra %s inválida: %w", rule.Kind, err)
		}
	}
	if err := c.checkTree(rule.Items, seen); err != nil {
		return err
	}
	for _, f := range rule.Fields {
		if err := c.checkTree(f.Rule, seen); err != nil {
			return fmt.Errorf("campo '%s': %w", f.Name, err)
		}
	}
	return nil
}

type typeClass int

const (
	classOther typeClass = iota
	classString
	classNumber
	classBoolean
)

func primitiveClass(kind string) typeClass {
	switch strings.ToLower(kind) {
	case "string":
		return classString
	case "integer", "long", "number", "float", "double":
		return classNumber
	case "boolean":
		return classBoolean
	default:
		return classOther
	}
}

func isIntegerType(kind string) bool {
	k := strings.ToLower(kind)
	return k == "integer" || k == "long"
}

// stringLength limita o tamanho padrão pelos mínimos e máximos declarados.
func stringLength(node *SchemaNode) int {
	length := DefaultStringLength
	if node.MaxLength > 0 && node.MaxLength < length {
		length = node.MaxLength
	}
	if node.MinLength > length {
		length = node.MinLength
	}
	return length
}

func ignore() *RuleExpr {
	return &RuleExpr{Kind: RuleIgnore}
}

func matchesExpr(pattern string) string {
	return fmt.Sprintf("(type(value) == string && value.matches(%s))", strconv.Quote(pattern))
}

func oneOfExpr(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return fmt.Sprintf("type(value) == string && value in [%s]", strings.Join(quoted, ", "))
}
