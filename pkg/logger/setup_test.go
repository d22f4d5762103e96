package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/raywall/update-emulator/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	t.Run("Default Level Info", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: true}
		_ = Configure(cfg)

		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("Custom Level Debug", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: true, Level: "DEBUG"}
		_ = Configure(cfg)

		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("Invalid Level Falls Back", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: true, Level: "loud"}
		_ = Configure(cfg)

		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})
}

func TestConfigureTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := ConfigureTo(config.LoggingConf{Enabled: true, Format: "json"}, &buf)

	log.Info().Str("route", "apk_slow").Msg("teste")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "teste", entry["message"])
	assert.Equal(t, "apk_slow", entry["route"])
	assert.Contains(t, entry, "time")
}

func TestConfigureTo_Console(t *testing.T) {
	var buf bytes.Buffer
	log := ConfigureTo(config.LoggingConf{Enabled: true, Format: "console"}, &buf)

	log.Warn().Msg("sem apk")
	assert.Contains(t, buf.String(), "sem apk")
	assert.Contains(t, buf.String(), "WRN")
}

func TestConfigureTo_Disabled(t *testing.T) {
	var buf bytes.Buffer
	log := ConfigureTo(config.LoggingConf{Enabled: false}, &buf)

	log.Error().Msg("teste")
	assert.Zero(t, buf.Len())
}

func TestConfigureTo_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emulator.log")

	var buf bytes.Buffer
	log := ConfigureTo(config.LoggingConf{
		Enabled: true,
		Format:  "json",
		File:    config.FileLogConf{Path: path, MaxSizeMB: 1},
	}, &buf)

	log.Info().Msg("para o arquivo")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "para o arquivo")
	assert.Contains(t, buf.String(), "para o arquivo")
}
