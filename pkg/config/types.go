package config

import "time"

// ServerConfig representa a estrutura raiz do arquivo YAML do servidor de mocks.
type ServerConfig struct {
	Version   string         `yaml:"version" validate:"required"`
	Service   ServiceDetails `yaml:"service" validate:"required"`
	Storage   StorageConf    `yaml:"storage"`
	Documents DocumentsConf  `yaml:"documents"`
	Query     QueryConf      `yaml:"query"`
	GraphQL   GraphQLConf    `yaml:"graphql"`
	Reload    ReloadConf     `yaml:"reload"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name    string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" env:"MOCK_RUNTIME" envDefault:"local" validate:"oneof=local lambda"`
	Port    int         `yaml:"port" env:"MOCK_PORT" envDefault:"8080" validate:"required_if=Runtime local,omitempty,gt=0,lt=65536"`
	Timeout string      `yaml:"timeout" envDefault:"30s"` // Ex: "500ms", "2s"
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" env:"MOCK_LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog    DatadogConf    `yaml:"datadog"`
	Prometheus PrometheusConf `yaml:"prometheus"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

type PrometheusConf struct {
	Enabled bool   `yaml:"enabled"`
	Route   string `yaml:"route" envDefault:"/metrics" validate:"omitempty,startswith=/"`
}

// StorageConf define onde os documentos (registros, identificadores e
// schemas) são lidos e gravados.
type StorageConf struct {
	Backend  string       `yaml:"backend" env:"MOCK_STORAGE_BACKEND" envDefault:"file" validate:"oneof=file memory redis s3 dynamodb sqlite postgres"`
	Region   string       `yaml:"region" env:"AWS_REGION"`
	Dir      string       `yaml:"dir" env:"MOCK_DATA_DIR" envDefault:"."`
	Redis    RedisConf    `yaml:"redis"`
	S3       S3Conf       `yaml:"s3"`
	DynamoDB DynamoDBConf `yaml:"dynamodb"`
	SQL      SQLConf      `yaml:"sql"`
}

type RedisConf struct {
	Addr     string `yaml:"addr" env:"MOCK_REDIS_ADDR"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" envDefault:"mock:"`
}

type S3Conf struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

type DynamoDBConf struct {
	Table string `yaml:"table"`
}

type SQLConf struct {
	DSN   string `yaml:"dsn" env:"MOCK_SQL_DSN"`
	Table string `yaml:"table" envDefault:"documents" validate:"omitempty,sqlident"`
}

// DocumentsConf nomeia os documentos persistidos.
type DocumentsConf struct {
	Records     string `yaml:"records" envDefault:"db.json"`
	Identifiers string `yaml:"identifiers" envDefault:"identifiers.json"`
	Schemas     string `yaml:"schemas" envDefault:"schemas.json"`
}

type QueryConf struct {
	DefaultLimit int `yaml:"default_limit" env:"MOCK_DEFAULT_LIMIT" envDefault:"10" validate:"gte=0"`
}

type GraphQLConf struct {
	Enabled bool   `yaml:"enabled"`
	Route   string `yaml:"route" envDefault:"/graphql" validate:"omitempty,startswith=/"`
}

// ReloadConf habilita a recarga das coleções por mensagens em uma fila SQS.
type ReloadConf struct {
	SQSQueueURL string `yaml:"sqs_queue_url" env:"MOCK_RELOAD_QUEUE"`
	WaitSeconds int    `yaml:"wait_seconds" envDefault:"20" validate:"gte=0,lte=20"`
}

func (s ServiceDetails) GetTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
