package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/fast-service-simulator/pkg/config"
	"github.com/raywall/fast-service-simulator/pkg/engine"
	"github.com/raywall/fast-service-simulator/pkg/transport"
)

var (
	configPath string
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = lambda.Start
	sqsFactory    = newSQSClient
	redisFactory  = func(c config.RedisConf) transport.MessageSubscriber {
		return transport.NewRedisSubscriber(c.Addr, c.Password, c.DB)
	}
)

func init() {
	configPath = os.Getenv("CONFIG_FILE_PATH")
}

func main() {
	// A validação ocorre aqui para não quebrar os testes unitários
	if configPath == "" {
		log.Fatalln("FATAL: CONFIG_FILE_PATH não informado")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configPath); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) error {
	// 1. Carrega Configuração (Loader)
	cfg, err := engine.Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	// 2. Inicializa Engine e publica a primeira geração
	sim, err := engine.NewSimulatorEngine(ctx, cfg, cfgPath)
	if err != nil {
		return err
	}
	defer sim.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 3. Sinais de Hot Reload
	if err := startReloaders(ctx, cfg.Reload, sim); err != nil {
		return err
	}

	// 4. Seleciona Runtime Strategy
	switch cfg.Server.Runtime {
	case "local":
		return serverStarter(ctx, sim, cfg.Server.Port)
	case "lambda":
		handler := transport.NewLambdaHandler(sim)
		lambdaStarter(handler.Handle)
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Server.Runtime)
	}
}

func startReloaders(ctx context.Context, cfg config.ReloadConf, sim engine.Reloader) error {
	if cfg.SQSQueueURL != "" {
		client, err := sqsFactory(ctx)
		if err != nil {
			return fmt.Errorf("falha ao criar cliente SQS: %w", err)
		}
		go transport.NewSQSReloader(client, cfg.SQSQueueURL, sim).Start(ctx)
	}

	if cfg.Redis.Channel != "" {
		reloader := transport.NewRedisReloader(redisFactory(cfg.Redis), cfg.Redis.Channel, sim)
		go func() {
			if err := reloader.Start(ctx); err != nil {
				log.Printf("ERRO: monitoramento Redis encerrado: %v", err)
			}
		}()
	}
	return nil
}

func newSQSClient(ctx context.Context) (transport.SQSClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(awsCfg), nil
}
