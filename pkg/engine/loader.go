package engine

import (
	"context"

	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/raywall/fast-service-simulator/pkg/config/injector"
	"github.com/raywall/fast-service-simulator/pkg/source"
)

// Load é a função simplificada usada no boot e no Hot Reload.
// Ela abstrai a criação do UniversalLoader.
func Load(ctx context.Context, location string) (*config.SimulatorConfig, error) {
	return NewUniversalLoader(source.NewLoader(), injector.New()).Load(ctx, location)
}

// UniversalLoader lê a configuração de qualquer origem suportada por source.Loader
// (arquivo, http(s)://, s3://, dynamodb://) e resolve as referências ${...}.
type UniversalLoader struct {
	source   config.Source
	injector *injector.Injector
}

// NewUniversalLoader cria uma nova instância.
func NewUniversalLoader(src config.Source, inj *injector.Injector) *UniversalLoader {
	return &UniversalLoader{source: src, injector: inj}
}

// Load detecta o esquema da fonte e carrega a configuração.
func (ul *UniversalLoader) Load(ctx context.Context, location string) (*config.SimulatorConfig, error) {
	return config.Load(ctx, ul.source, location, ul.injector)
}
