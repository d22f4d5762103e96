package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/update-emulator/pkg/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Configure inicializa o logger global baseando-se na configuração do YAML.
func Configure(cfg config.LoggingConf) zerolog.Logger {
	return ConfigureTo(cfg, os.Stdout)
}

// ConfigureTo é como Configure, mas escreve em out em vez de os.Stdout.
func ConfigureTo(cfg config.LoggingConf, out io.Writer) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	// Arquivo com rotação sempre recebe JSON, independente do formato do terminal
	if cfg.Enabled && cfg.File.Path != "" {
		output = zerolog.MultiLevelWriter(output, RotatingFile(cfg.File))
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Logger()
}

// RotatingFile cria o writer de arquivo rotacionado. Zero nos limites usa os
// defaults do lumberjack (100MB, sem limite de backups/idade).
func RotatingFile(cfg config.FileLogConf) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
