package engine

import (
	"context"

	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/raywall/fast-service-simulator/pkg/scenario"
)

// Loader é responsável por carregar e decodificar a configuração do simulador.
// Ele abstrai a origem do arquivo (Sistema de arquivos, S3, URL, etc).
type Loader interface {
	// Load lê a configuração a partir de uma origem e retorna a struct validada.
	Load(ctx context.Context, source string) (*config.SimulatorConfig, error)
}

// Executor é a interface de tempo de execução (Runtime).
// Ela deve ser thread-safe, pois será chamada concorrentemente por cada
// requisição HTTP/Evento.
type Executor interface {
	// Execute resolve o cenário da requisição e produz a resposta simulada.
	Execute(ctx context.Context, req scenario.Request) (*Result, error)

	// Shutdown realiza o encerramento gracioso de recursos (flush de métricas).
	Shutdown(ctx context.Context) error
}

// Reloader reconstrói o conjunto de cenários e o publica atomicamente.
type Reloader interface {
	Reload(ctx context.Context) error
}
