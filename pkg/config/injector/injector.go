package injector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.API_KEY}, ${ssm./app/config}, ${secret.db_pass}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Injector substitui referências ${...} nos campos string de uma struct.
// Clientes AWS não informados são criados no primeiro uso.
type Injector struct {
	mu      sync.Mutex
	ssm     SSMClient
	secrets SecretsClient

	awsConfig func(ctx context.Context) (aws.Config, error)
}

type Option func(*Injector)

func WithSSMClient(c SSMClient) Option         { return func(i *Injector) { i.ssm = c } }
func WithSecretsClient(c SecretsClient) Option { return func(i *Injector) { i.secrets = c } }

func New(opts ...Option) *Injector {
	i := &Injector{
		awsConfig: func(ctx context.Context) (aws.Config, error) {
			return awsconfig.LoadDefaultConfig(ctx)
		},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			if !v.Type().Field(k).IsExported() {
				continue
			}
			if err := i.injectRecursive(ctx, v.Field(k)); err != nil {
				return err
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		newValue, err := i.interpolateString(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(newValue)

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && !v.IsNil() {
			return i.injectMap(ctx, v)
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		if elem := v.Elem(); elem.Kind() == reflect.String && v.CanSet() {
			newValue, err := i.interpolateString(ctx, elem.String())
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(newValue))
			return nil
		}
		return i.injectRecursive(ctx, v.Elem())

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		if err != nil {
			return match
		}
		sub := pattern.FindStringSubmatch(match)

		val, resolveErr := i.fetchValue(ctx, sub[1], sub[2])
		if resolveErr != nil {
			err = resolveErr
			return match
		}
		return val
	})

	return result, err
}

// injectMap lida com mapas dinâmicos (ex: corpo de respostas estáticas)
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	updates := make(map[string]reflect.Value)

	for iter.Next() {
		elem := iter.Value()
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			newVal, err := i.interpolateString(ctx, elem.String())
			if err != nil {
				return err
			}
			updates[iter.Key().String()] = reflect.ValueOf(newVal).Convert(v.Type().Elem())
		case reflect.Map, reflect.Slice, reflect.Ptr:
			if err := i.injectRecursive(ctx, elem); err != nil {
				return err
			}
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), val)
	}
	return nil
}

// fetchValue centraliza a busca de dados
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		// Variável não encontrada retorna vazio
		return os.Getenv(key), nil

	case "ssm":
		client, err := i.ssmClient(ctx)
		if err != nil {
			return "", err
		}
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(key),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return "", fmt.Errorf("erro no SSM GetParameter (%s): %w", key, err)
		}
		if out.Parameter == nil || out.Parameter.Value == nil {
			return "", fmt.Errorf("parâmetro SSM sem valor: %s", key)
		}
		return *out.Parameter.Value, nil

	case "secret":
		return i.secretValue(ctx, key)
	}

	return "", fmt.Errorf("origem desconhecida: %s", sourceType)
}

// secretValue aceita "id" ou "id#campo"; com campo, o segredo é lido como JSON.
func (i *Injector) secretValue(ctx context.Context, key string) (string, error) {
	secretID, field, hasField := strings.Cut(key, "#")

	client, err := i.secretsClient(ctx)
	if err != nil {
		return "", err
	}
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager (%s): %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo sem valor textual: %s", secretID)
	}

	val := *out.SecretString
	if !hasField {
		return val, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("segredo %s não é JSON: %w", secretID, err)
	}
	fieldVal, ok := data[field]
	if !ok {
		return "", fmt.Errorf("campo '%s' ausente no segredo %s", field, secretID)
	}
	return fmt.Sprintf("%v", fieldVal), nil
}

func (i *Injector) ssmClient(ctx context.Context) (SSMClient, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ssm == nil {
		cfg, err := i.awsConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("falha config AWS: %w", err)
		}
		i.ssm = ssm.NewFromConfig(cfg)
	}
	return i.ssm, nil
}

func (i *Injector) secretsClient(ctx context.Context) (SecretsClient, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.secrets == nil {
		cfg, err := i.awsConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("falha config AWS: %w", err)
		}
		i.secrets = secretsmanager.NewFromConfig(cfg)
	}
	return i.secrets, nil
}
