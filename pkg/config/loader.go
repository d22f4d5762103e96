package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/update-emulator/pkg/awsconf"
	"github.com/raywall/update-emulator/pkg/config/injector"
	"gopkg.in/yaml.v3"
)

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// UniversalLoader lê o YAML do emulador de um arquivo local, do S3 ou do DynamoDB.
type UniversalLoader struct {
	validator *ConfigValidator
	injector  *injector.Injector
	s3        S3Downloader
	dynamo    DynamoGetter

	skipValidation bool
}

type LoaderOption func(*UniversalLoader)

func WithS3Client(c S3Downloader) LoaderOption {
	return func(ul *UniversalLoader) { ul.s3 = c }
}

func WithDynamoClient(c DynamoGetter) LoaderOption {
	return func(ul *UniversalLoader) { ul.dynamo = c }
}

func WithInjector(i *injector.Injector) LoaderOption {
	return func(ul *UniversalLoader) { ul.injector = i }
}

// WithoutValidation devolve a configuração sem validar. Usado quando env e
// flags ainda serão aplicados e a validação acontece depois deles.
func WithoutValidation() LoaderOption {
	return func(ul *UniversalLoader) { ul.skipValidation = true }
}

// NewUniversalLoader cria uma nova instância.
func NewUniversalLoader(opts ...LoaderOption) *UniversalLoader {
	ul := &UniversalLoader{
		validator: NewValidator(),
		injector:  injector.New(),
	}
	for _, opt := range opts {
		opt(ul)
	}
	return ul
}

// Load detecta o esquema da fonte e devolve a configuração já mesclada com
// Default(): chaves ausentes no YAML mantêm o valor padrão.
// Uma fonte vazia devolve apenas os defaults.
func (ul *UniversalLoader) Load(ctx context.Context, source string) (*EmulatorConfig, error) {
	if source == "" {
		cfg := Default()
		return &cfg, nil
	}

	var rawData []byte
	var err error

	switch {
	case strings.HasPrefix(source, "s3://"):
		rawData, err = ul.loadFromS3(ctx, source)
	case strings.HasPrefix(source, "dynamodb://"):
		rawData, err = ul.loadFromDynamoDB(ctx, source)
	default:
		rawData, err = ul.loadFromFile(source)
	}

	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", source, err)
	}

	return ul.parseAndValidate(ctx, rawData)
}

// --- Estratégias de carregamento ---

func (ul *UniversalLoader) loadFromFile(path string) ([]byte, error) {
	// Suporta tanto "file://emulator.yaml" quanto apenas "emulator.yaml"
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (ul *UniversalLoader) loadFromS3(ctx context.Context, uri string) ([]byte, error) {
	if ul.s3 == nil {
		cfg, err := awsconf.Load(ctx, os.Getenv("AWS_REGION"))
		if err != nil {
			return nil, err
		}
		ul.s3 = s3.NewFromConfig(cfg)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("URL S3 incompleta, esperado s3://bucket/chave: %s", uri)
	}

	out, err := ul.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (ul *UniversalLoader) loadFromDynamoDB(ctx context.Context, uri string) ([]byte, error) {
	if ul.dynamo == nil {
		cfg, err := awsconf.Load(ctx, os.Getenv("AWS_REGION"))
		if err != nil {
			return nil, err
		}
		ul.dynamo = dynamodb.NewFromConfig(cfg)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	// Query Params opcionais: dynamodb://tabela/chave?col=yaml&pk=Name
	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config"
	}

	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := ul.dynamo.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}

	if out.Item == nil {
		return nil, fmt.Errorf("item não encontrado no DynamoDB")
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

func (ul *UniversalLoader) parseAndValidate(ctx context.Context, data []byte) (*EmulatorConfig, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}

	if err := ul.injector.Inject(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
	}

	if ul.skipValidation {
		return &cfg, nil
	}

	if err := ul.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validação da configuração falhou: %w", err)
	}

	return &cfg, nil
}
