package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName identifica o simulador nos logs estruturados.
const ServiceName = "fast-service-simulator"

type correlationKey struct{}

// Configure inicializa o logger global baseando-se na configuração do YAML.
func Configure(cfg config.LoggingConf) zerolog.Logger {
	return configure(cfg, os.Stdout)
}

func configure(cfg config.LoggingConf, out io.Writer) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Define o output (JSON para produção, Console "bonito" para local se solicitado)
	output := out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	// Os pacotes derivam seus loggers de log.Logger com o campo "component"
	log.Logger = logger
	return logger
}

// WithCorrelationID guarda o identificador da requisição no contexto.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID devolve o identificador guardado por WithCorrelationID.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// FromContext devolve base enriquecido com o correlation_id do contexto, quando houver.
func FromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	if id := CorrelationID(ctx); id != "" {
		return base.With().Str("correlation_id", id).Logger()
	}
	return base
}
