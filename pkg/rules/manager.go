package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// VarValue é a variável CEL que recebe o valor sob validação.
const VarValue = "value"

// RuleManager gerencia a compilação e avaliação de expressões CEL.
// Programas compilados ficam em cache por expressão, pois as mesmas regras
// são avaliadas a cada requisição.
type RuleManager struct {
	env      *cel.Env
	programs sync.Map
}

// NewRuleManager inicializa o ambiente CEL com as variáveis usadas pelas regras de payload.
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.StdLib(),
		cel.Declarations(
			decls.NewVar(VarValue, decls.Dyn), // Valor do campo (ou payload inteiro)
			decls.NewVar("path", decls.String), // Caminho do campo no payload
		),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	return &RuleManager{env: env}, nil
}

// Check compila a expressão sem avaliá-la. Usado em tempo de síntese para falhar cedo.
func (rm *RuleManager) Check(expression string) error {
	_, err := rm.program(expression)
	return err
}

// EvaluateBool processa regras de validação (deve retornar true/false).
func (rm *RuleManager) EvaluateBool(expression string, ctx map[string]interface{}) (bool, error) {
	if expression == "" {
		return true, nil // Expressão vazia = aprova
	}

	out, err := rm.eval(expression, ctx)
	if err != nil {
		return false, err
	}

	if val, ok := out.(bool); ok {
		return val, nil
	}
	return false, fmt.Errorf("resultado não é booleano")
}

// EvaluateValue processa expressões que retornam um valor dinâmico.
func (rm *RuleManager) EvaluateValue(expression string, ctx map[string]interface{}) (interface{}, error) {
	if expression == "" {
		return nil, nil
	}
	return rm.eval(expression, ctx)
}

func (rm *RuleManager) eval(expression string, ctx map[string]interface{}) (interface{}, error) {
	prg, err := rm.program(expression)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx["path"]; !ok {
		withPath := make(map[string]interface{}, len(ctx)+1)
		for k, v := range ctx {
			withPath[k] = v
		}
		withPath["path"] = ""
		ctx = withPath
	}

	out, _, err := prg.Eval(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro execução CEL: %w", err)
	}
	return out.Value(), nil
}

// program compila (ou recupera do cache) o programa da expressão.
func (rm *RuleManager) program(expr string) (cel.Program, error) {
	if cached, ok := rm.programs.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro compilação CEL '%s': %w", expr, issues.Err())
	}

	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar programa CEL: %w", err)
	}

	rm.programs.Store(expr, prg)
	return prg, nil
}
