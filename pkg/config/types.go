package config

// SimulatorConfig representa a estrutura raiz do arquivo YAML do simulador.
type SimulatorConfig struct {
	Simulator SimulatorConf `yaml:"simulator"`
	Server    ServerConf    `yaml:"server"`
	Reload    ReloadConf    `yaml:"reload"`
	Logging   LoggingConf   `yaml:"logging"`
	Metrics   MetricsConf   `yaml:"metrics"`
}

// SimulatorConf controla a resolução de cenários.
type SimulatorConf struct {
	DefaultScenario   string         `yaml:"default_scenario" env:"SIMULATOR_DEFAULT_SCENARIO" envDefault:"default" validate:"required"`
	UseDefaultMapping bool           `yaml:"use_default_mapping" env:"SIMULATOR_USE_DEFAULT_MAPPING" envDefault:"true"`
	Swagger           SwaggerConf    `yaml:"swagger"`
	Scenarios         []ScenarioConf `yaml:"scenarios" validate:"dive"`
}

// SwaggerConf aponta a especificação usada na síntese. API vazia desabilita a síntese.
type SwaggerConf struct {
	API                string `yaml:"api" env:"SIMULATOR_SWAGGER_API"`
	ContextPath        string `yaml:"context_path" env:"SIMULATOR_SWAGGER_CONTEXT_PATH" validate:"omitempty,startswith=/"`
	InboundDictionary  string `yaml:"inbound_dictionary" env:"SIMULATOR_SWAGGER_INBOUND_DICTIONARY"`
	OutboundDictionary string `yaml:"outbound_dictionary" env:"SIMULATOR_SWAGGER_OUTBOUND_DICTIONARY"`
}

// ScenarioConf declara estaticamente um cenário e sua resposta roteirizada.
type ScenarioConf struct {
	Name        string       `yaml:"name" validate:"required"`
	Methods     []string     `yaml:"methods"`
	Path        string       `yaml:"path" validate:"omitempty,startswith=/"`
	QueryParams []string     `yaml:"query_params"`
	Headers     []string     `yaml:"headers"`
	Response    ResponseConf `yaml:"response"`
}

type ResponseConf struct {
	Status  int               `yaml:"status" validate:"omitempty,gte=100,lt=600"`
	Headers map[string]string `yaml:"headers"`
	Body    interface{}       `yaml:"body"`
}

type ServerConf struct {
	Runtime        string `yaml:"runtime" env:"SERVER_RUNTIME" envDefault:"local" validate:"required,oneof=local lambda"`
	Port           int    `yaml:"port" env:"SERVER_PORT" envDefault:"8080" validate:"required_if=Runtime local"`
	NotFoundStatus int    `yaml:"not_found_status" env:"SERVER_NOT_FOUND_STATUS" envDefault:"404" validate:"gte=400,lt=600"`
}

// ReloadConf define os sinais externos que disparam a recarga dos cenários.
type ReloadConf struct {
	SQSQueueURL string    `yaml:"sqs_queue_url" env:"RELOAD_SQS_QUEUE_URL" validate:"omitempty,url"`
	Redis       RedisConf `yaml:"redis"`
}

type RedisConf struct {
	Addr     string `yaml:"addr" env:"RELOAD_REDIS_ADDR" validate:"required_with=Channel"`
	Password string `yaml:"password" env:"RELOAD_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"RELOAD_REDIS_DB"`
	Channel  string `yaml:"channel" env:"RELOAD_REDIS_CHANNEL" validate:"required_with=Addr"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled" env:"LOG_ENABLED" envDefault:"true"`
	Level   string `yaml:"level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format  string `yaml:"format" env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" envDefault:"127.0.0.1:8125" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace" env:"DD_NAMESPACE" envDefault:"simulator."`
}
