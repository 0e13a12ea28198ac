package config

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var knownMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true, http.MethodDelete: true,
	http.MethodPatch: true, http.MethodHead: true, http.MethodOptions: true, http.MethodTrace: true,
}

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *SimulatorConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *SimulatorConfig) error {
	// 1. Unicidade dos nomes de cenários estáticos
	seen := make(map[string]bool)
	for _, sc := range cfg.Simulator.Scenarios {
		if seen[sc.Name] {
			return fmt.Errorf("cenário duplicado detectado: '%s'", sc.Name)
		}
		seen[sc.Name] = true

		// 2. Métodos HTTP conhecidos
		for _, m := range sc.Methods {
			if !knownMethods[strings.ToUpper(m)] {
				return fmt.Errorf("método HTTP inválido no cenário '%s': '%s'", sc.Name, m)
			}
		}
	}

	// 3. Dicionários só fazem sentido com uma especificação
	sw := cfg.Simulator.Swagger
	if sw.API == "" && (sw.InboundDictionary != "" || sw.OutboundDictionary != "") {
		return fmt.Errorf("dicionários configurados sem 'simulator.swagger.api'")
	}

	return nil
}
