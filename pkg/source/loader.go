// Package source lê documentos (configuração, especificações e dicionários) de arquivos
// locais, URLs HTTP(S), buckets S3 ou itens do DynamoDB.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Loader detecta o esquema da localização e lê o conteúdo bruto.
// Clientes AWS não informados são criados sob demanda com a configuração padrão.
type Loader struct {
	mu     sync.Mutex
	s3     S3Downloader
	dynamo DynamoGetter
	http   HTTPDoer

	awsConfig func(ctx context.Context) (aws.Config, error)
}

// Option customiza o Loader.
type Option func(*Loader)

func WithS3Client(c S3Downloader) Option     { return func(l *Loader) { l.s3 = c } }
func WithDynamoClient(c DynamoGetter) Option { return func(l *Loader) { l.dynamo = c } }
func WithHTTPClient(c HTTPDoer) Option       { return func(l *Loader) { l.http = c } }

// NewLoader cria uma nova instância.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		http: &http.Client{Timeout: 30 * time.Second},
		awsConfig: func(ctx context.Context) (aws.Config, error) {
			return config.LoadDefaultConfig(ctx)
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load lê a localização. Formatos aceitos:
//
//	config.yaml | file://config.yaml
//	https://host/openapi.json
//	s3://bucket/chave.yaml
//	dynamodb://tabela/chave?pk=id&col=content
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	switch {
	case location == "":
		return nil, fmt.Errorf("localização vazia")
	case strings.HasPrefix(location, "s3://"):
		client, err := l.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		return loadFromS3(ctx, client, location)
	case strings.HasPrefix(location, "dynamodb://"):
		client, err := l.dynamoClient(ctx)
		if err != nil {
			return nil, err
		}
		return loadFromDynamoDB(ctx, client, location)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return l.loadFromHTTP(ctx, location)
	default:
		return loadFromFile(location)
	}
}

func (l *Loader) s3Client(ctx context.Context) (S3Downloader, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.s3 == nil {
		cfg, err := l.awsConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("falha ao carregar config AWS: %w", err)
		}
		l.s3 = s3.NewFromConfig(cfg)
	}
	return l.s3, nil
}

func (l *Loader) dynamoClient(ctx context.Context) (DynamoGetter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dynamo == nil {
		cfg, err := l.awsConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("falha ao carregar config AWS: %w", err)
		}
		l.dynamo = dynamodb.NewFromConfig(cfg)
	}
	return l.dynamo, nil
}

// --- Estratégias de carregamento ---

func loadFromFile(path string) ([]byte, error) {
	// Suporta tanto "file://spec.yaml" quanto apenas "spec.yaml"
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (l *Loader) loadFromHTTP(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("URL inválida: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("falha na requisição HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status inesperado: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func loadFromS3(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func loadFromDynamoDB(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	// Query Params opcionais: dynamodb://tabela/chave?col=dado&pk=SpecId
	colName := u.Query().Get("col")
	if colName == "" {
		colName = "content" // Coluna padrão onde o documento está salvo
	}

	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id" // Nome padrão da Partition Key
	}

	// Busca apenas a coluna do documento
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name(colName))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("projeção DynamoDB inválida: %w", err)
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, err
	}

	if out.Item == nil {
		return nil, fmt.Errorf("item '%s' não encontrado na tabela '%s'", pkValue, tableName)
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}

	return []byte(content), nil
}
