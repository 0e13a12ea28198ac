package transport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/fast-service-simulator/pkg/engine"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SQSClient define a interface necessária para o reloader (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSReloader gerencia o loop de verificação do SQS
type SQSReloader struct {
	client     SQSClient
	queueUrl   string
	reloader   engine.Reloader
	retryDelay time.Duration
	logger     zerolog.Logger
}

// NewSQSReloader cria uma nova instância do reloader
func NewSQSReloader(client SQSClient, queueUrl string, reloader engine.Reloader) *SQSReloader {
	return &SQSReloader{
		client:     client,
		queueUrl:   queueUrl,
		reloader:   reloader,
		retryDelay: 5 * time.Second,
		logger:     log.With().Str("component", "sqs_reloader").Logger(),
	}
}

// Start inicia o monitoramento (bloqueante). Uma mensagem dispara um reload; a mensagem é
// removida da fila mesmo quando o reload falha, pois a geração anterior continua ativa.
func (s *SQSReloader) Start(ctx context.Context) {
	if s.queueUrl == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada. Hot Reload desativado.")
		return
	}

	s.logger.Info().Str("queue", s.queueUrl).Msg("Monitorando fila SQS para Hot Reload")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Parando monitoramento SQS")
			return
		default:
			out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(s.queueUrl),
				MaxNumberOfMessages: 1,
				WaitTimeSeconds:     20, // Long polling
			})

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error().Err(err).Dur("retry_in", s.retryDelay).Msg("Erro no SQS. Retentando...")
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.retryDelay):
				}
				continue
			}

			if len(out.Messages) > 0 {
				s.logger.Info().Msg("Evento de alteração recebido via SQS")

				if err := s.reloader.Reload(ctx); err != nil {
					s.logger.Error().Err(err).Msg("Falha no Reload; geração anterior mantida")
				} else {
					s.logger.Info().Msg("Hot Reload aplicado")
				}

				_, _ = s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(s.queueUrl),
					ReceiptHandle: out.Messages[0].ReceiptHandle,
				})
			}
		}
	}
}
