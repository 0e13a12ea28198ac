package config

import (
	"context"
	"fmt"

	"github.com/raywall/fast-service-simulator/pkg/config/injector"
	"gopkg.in/yaml.v3"
)

// Source lê o conteúdo bruto do arquivo de configuração.
type Source interface {
	Load(ctx context.Context, location string) ([]byte, error)
}

// Load lê, interpola, aplica variáveis de ambiente e valida a configuração.
// A ordem de precedência é: envDefault < YAML < variáveis de ambiente.
func Load(ctx context.Context, src Source, location string, inj *injector.Injector) (*SimulatorConfig, error) {
	data, err := src.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", location, err)
	}
	return Parse(ctx, data, inj)
}

// Parse processa o YAML já lido. Com inj nil, ${...} não é interpolado.
func Parse(ctx context.Context, data []byte, inj *injector.Injector) (*SimulatorConfig, error) {
	var cfg SimulatorConfig
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}

	// 1. Unmarshal (YAML -> Struct)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}

	// 2. Injection (${env.X}, ${ssm./path}, ${secret.id})
	if inj != nil {
		if err := inj.Inject(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
		}
	}

	// 3. Variáveis de ambiente
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}

	// 4. Validation
	if err := NewValidator().Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validação da configuração falhou: %w", err)
	}

	return &cfg, nil
}
