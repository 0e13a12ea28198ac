package transport

import (
	"context"

	"github.com/raywall/fast-service-simulator/pkg/engine"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MessageSubscriber abstrai a assinatura de um canal pub/sub (permite Mocking).
type MessageSubscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan *redis.Message, func() error, error)
}

// RedisSubscriber adapta o cliente go-redis a MessageSubscriber.
type RedisSubscriber struct {
	client *redis.Client
}

// NewRedisSubscriber cria o cliente Redis usado para receber sinais de reload.
func NewRedisSubscriber(addr, password string, db int) *RedisSubscriber {
	return &RedisSubscriber{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (r *RedisSubscriber) Subscribe(ctx context.Context, channel string) (<-chan *redis.Message, func() error, error) {
	pubsub := r.client.Subscribe(ctx, channel)
	// Aguarda a confirmação da assinatura antes de consumir o canal.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}
	return pubsub.Channel(), pubsub.Close, nil
}

// Close encerra o cliente Redis.
func (r *RedisSubscriber) Close() error {
	return r.client.Close()
}

// RedisReloader dispara um reload a cada mensagem publicada no canal.
type RedisReloader struct {
	subscriber MessageSubscriber
	channel    string
	reloader   engine.Reloader
	logger     zerolog.Logger
}

func NewRedisReloader(subscriber MessageSubscriber, channel string, reloader engine.Reloader) *RedisReloader {
	return &RedisReloader{
		subscriber: subscriber,
		channel:    channel,
		reloader:   reloader,
		logger:     log.With().Str("component", "redis_reloader").Logger(),
	}
}

// Start assina o canal e processa mensagens até ctx ser cancelado (bloqueante).
func (r *RedisReloader) Start(ctx context.Context) error {
	if r.channel == "" {
		r.logger.Warn().Msg("Canal Redis não configurado. Hot Reload desativado.")
		return nil
	}

	messages, closeFn, err := r.subscriber.Subscribe(ctx, r.channel)
	if err != nil {
		return err
	}
	defer closeFn()

	r.logger.Info().Str("channel", r.channel).Msg("Monitorando canal Redis para Hot Reload")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Parando monitoramento Redis")
			return nil
		case msg, ok := <-messages:
			if !ok {
				r.logger.Warn().Msg("Canal Redis encerrado")
				return nil
			}
			r.logger.Info().Str("payload", msg.Payload).Msg("Evento de alteração recebido via Redis")
			if err := r.reloader.Reload(ctx); err != nil {
				r.logger.Error().Err(err).Msg("Falha no Reload; geração anterior mantida")
				continue
			}
			r.logger.Info().Msg("Hot Reload aplicado")
		}
	}
}
