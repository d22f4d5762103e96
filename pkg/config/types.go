package config

import "time"

// Valores padrão do emulador.
const (
	DefaultPort          = 8000
	DefaultSlowChunkSize = 64 * 1024
	DefaultSlowDelay     = 200 * time.Millisecond
)

// EmulatorConfig representa a estrutura raiz do arquivo YAML do emulador.
type EmulatorConfig struct {
	// Runtime "local" sobe um http.Server; "lambda" atende eventos do API Gateway.
	Runtime string          `yaml:"runtime" env:"UPDATE_EMULATOR_RUNTIME" validate:"oneof=local lambda"`
	Server  ServerConfig    `yaml:"server"`
	Release ReleaseMetadata `yaml:"release"`
	Logging LoggingConf     `yaml:"logging"`
	Metrics MetricsConf     `yaml:"metrics"`
}

// ServerConfig é a configuração de runtime lida por todos os handlers.
// É montada uma vez no startup e repassada por valor; nunca é alterada
// depois que o servidor sobe.
type ServerConfig struct {
	Port          int           `yaml:"port" env:"UPDATE_EMULATOR_PORT" validate:"gte=1,lte=65535"`
	APKPath       string        `yaml:"apk_path" env:"UPDATE_EMULATOR_APK"`
	SlowChunkSize int           `yaml:"slow_chunk_size" env:"UPDATE_EMULATOR_SLOW_CHUNK" validate:"gte=1"`
	SlowDelay     time.Duration `yaml:"slow_delay" env:"UPDATE_EMULATOR_SLOW_DELAY" validate:"gte=0"`
}

// HasAPK indica se um caminho de APK foi informado (não verifica o disco).
func (s ServerConfig) HasAPK() bool {
	return s.APKPath != ""
}

// ReleaseMetadata é o payload de /releases/latest.json. A ordem dos campos
// define a ordem das chaves no JSON.
type ReleaseMetadata struct {
	VersionName string `yaml:"version_name" json:"versionName"`
	Body        string `yaml:"body" json:"body"`
	HTMLURL     string `yaml:"html_url" json:"htmlUrl" validate:"omitempty,url"`
	DownloadURL string `yaml:"download_url" json:"downloadUrl" validate:"omitempty,url"`
	AssetName   string `yaml:"asset_name" json:"assetName"`
}

type LoggingConf struct {
	Enabled bool        `yaml:"enabled" env:"UPDATE_EMULATOR_LOG_ENABLED"`
	Level   string      `yaml:"level" env:"UPDATE_EMULATOR_LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Format  string      `yaml:"format" env:"UPDATE_EMULATOR_LOG_FORMAT" validate:"omitempty,oneof=json console"`
	File    FileLogConf `yaml:"file"`
}

// FileLogConf habilita a gravação em arquivo com rotação quando Path é informado.
type FileLogConf struct {
	Path       string `yaml:"path" env:"UPDATE_EMULATOR_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
	Compress   bool   `yaml:"compress"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool     `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string   `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string   `yaml:"namespace"`
	Tags      []string `yaml:"tags"`
}

// DefaultRelease devolve os metadados usados quando o arquivo não os define.
func DefaultRelease() ReleaseMetadata {
	return ReleaseMetadata{
		VersionName: "v1.70000-mock",
		Body:        "Mock release for testing the in-app updater. Includes fake notes and changelog.",
		HTMLURL:     "http://localhost/release-notes",
		DownloadURL: "http://192.168.24.1:8000/apk",
		AssetName:   "VishnuCast-1.7-mock.apk",
	}
}

// Default devolve a configuração completa usada como base antes do arquivo,
// das variáveis de ambiente e das flags.
func Default() EmulatorConfig {
	return EmulatorConfig{
		Runtime: "local",
		Server: ServerConfig{
			Port:          DefaultPort,
			SlowChunkSize: DefaultSlowChunkSize,
			SlowDelay:     DefaultSlowDelay,
		},
		Release: DefaultRelease(),
		Logging: LoggingConf{
			Enabled: true,
			Level:   "info",
			Format:  "console",
		},
	}
}
