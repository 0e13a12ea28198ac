package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/raywall/fast-service-simulator/pkg/openapi"
	"github.com/raywall/fast-service-simulator/pkg/rules"
	"github.com/raywall/fast-service-simulator/pkg/scenario"
)

// ValidationReport contém o resultado detalhado da análise.
type ValidationReport struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Scenarios []string `json:"scenarios,omitempty"`
}

// Analyze realiza uma inspeção profunda na configuração: valida a estrutura, monta os
// cenários (inclusive a síntese da especificação) sem publicá-los e aponta cenários
// inalcançáveis.
func Analyze(ctx context.Context, cfg *config.SimulatorConfig, docs openapi.Loader) (*ValidationReport, error) {
	report := &ValidationReport{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	// 1. Validação estrutural e semântica
	if err := config.NewValidator().Validate(cfg); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}

	// 2. Montagem dos cenários (compila as regras CEL da síntese)
	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, fmt.Errorf("falha interna ao iniciar analisador de regras: %w", err)
	}

	scenarios, err := buildScenarios(ctx, cfg, docs, rm, nil)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Cenários: %v", err))
	}

	// 3. Alcançabilidade
	names := make(map[string]bool, len(scenarios))
	seenRoutes := make(map[string]string)
	for _, d := range scenarios {
		names[d.Name] = true
		report.Scenarios = append(report.Scenarios, d.String())

		if d.Route == nil {
			if d.Name != cfg.Simulator.DefaultScenario || !cfg.Simulator.UseDefaultMapping {
				report.Warnings = append(report.Warnings, fmt.Sprintf("Cenário '%s' sem rota nunca será resolvido", d.Name))
			}
			continue
		}

		for _, key := range routeKeys(d) {
			if first, exists := seenRoutes[key]; exists {
				report.Warnings = append(report.Warnings, fmt.Sprintf("Cenário '%s' é encoberto por '%s' em %s", d.Name, first, key))
				continue
			}
			seenRoutes[key] = d.Name
		}
	}

	if cfg.Simulator.UseDefaultMapping && len(scenarios) > 0 && !names[cfg.Simulator.DefaultScenario] {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Cenário padrão '%s' não está registrado", cfg.Simulator.DefaultScenario))
	}

	if len(report.Errors) > 0 {
		report.Valid = false
	}

	return report, nil
}

// routeKeys identifica as combinações método+path+restrições de um cenário. Dois cenários
// com a mesma chave disputam as mesmas requisições e vence o primeiro declarado.
func routeKeys(d *scenario.Descriptor) []string {
	suffix := " " + d.Path() + "?" + strings.Join(d.Route.QueryParams, "&") + "#" + strings.ToLower(strings.Join(d.Route.Headers, ","))
	methods := d.Methods()
	if len(methods) == 0 {
		return []string{"*" + suffix}
	}
	keys := make([]string, len(methods))
	for i, m := range methods {
		keys[i] = m + suffix
	}
	return keys
}
