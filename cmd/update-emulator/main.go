// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/raywall/update-emulator/envloader"
	"github.com/raywall/update-emulator/pkg/config"
	"github.com/raywall/update-emulator/pkg/logger"
	"github.com/raywall/update-emulator/pkg/metrics"
	"github.com/raywall/update-emulator/pkg/observability"
	"github.com/raywall/update-emulator/pkg/responder"
	"github.com/raywall/update-emulator/pkg/transport"
	"github.com/rs/zerolog/log"
)

const configEnv = "UPDATE_EMULATOR_CONFIG"

var (
	// Variáveis injetáveis para mocking
	serverStarter = func(ctx context.Context, s *transport.Server) error {
		return s.Run(ctx)
	}
	lambdaStarter = lambda.Start
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("FATAL")
	}
}

// cliFlags guarda os valores de linha de comando. Só as flags informadas
// explicitamente sobrepõem arquivo e ambiente.
type cliFlags struct {
	apk       string
	port      int
	slowChunk int
	slowDelay float64
	config    string
	set       map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: map[string]bool{}}

	fs := flag.NewFlagSet("update-emulator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.apk, "apk", "", "path to the APK served by /apk and /apk-slow")
	fs.IntVar(&f.port, "port", config.DefaultPort, "TCP port to listen on (all interfaces)")
	fs.IntVar(&f.slowChunk, "slow-chunk", config.DefaultSlowChunkSize, "block size in bytes for /apk-slow")
	fs.Float64Var(&f.slowDelay, "slow-delay", config.DefaultSlowDelay.Seconds(), "delay in seconds between /apk-slow blocks")
	fs.StringVar(&f.config, "config", os.Getenv(configEnv), "config source: file path, file://, s3:// or dynamodb://")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("argumentos inesperados: %v", fs.Args())
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// apply sobrepõe cfg com as flags explicitamente informadas.
func (f *cliFlags) apply(cfg *config.EmulatorConfig) {
	if f.set["apk"] {
		cfg.Server.APKPath = f.apk
	}
	if f.set["port"] {
		cfg.Server.Port = f.port
	}
	if f.set["slow-chunk"] {
		cfg.Server.SlowChunkSize = f.slowChunk
	}
	if f.set["slow-delay"] {
		cfg.Server.SlowDelay = time.Duration(f.slowDelay * float64(time.Second))
	}
}

// loadConfig aplica a precedência defaults < arquivo < ambiente < flags e
// valida uma única vez, sobre o resultado final.
func loadConfig(ctx context.Context, f *cliFlags) (*config.EmulatorConfig, error) {
	cfg, err := config.NewUniversalLoader(config.WithoutValidation()).Load(ctx, f.config)
	if err != nil {
		return nil, err
	}
	if err := envloader.Load(cfg); err != nil {
		return nil, fmt.Errorf("falha ao ler variáveis de ambiente: %w", err)
	}
	f.apply(cfg)

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run contém a lógica principal testável
func run(ctx context.Context, args []string, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx, f)
	if err != nil {
		return err
	}

	lg := logger.Configure(cfg.Logging)
	log.Logger = lg

	provider, err := observability.SetupMetrics(cfg.Metrics)
	if err != nil {
		return err
	}
	defer provider.Close()

	recorder := metrics.NewRecorder(provider, lg)
	emitter := responder.NewEmitter(cfg.Server, cfg.Release, responder.WithRecorder(recorder))
	handler := transport.NewHandler(emitter, lg, recorder)

	if !cfg.Server.HasAPK() {
		lg.Warn().Msg("nenhum APK configurado (-apk): /apk e /apk-slow responderão 500")
	}

	switch cfg.Runtime {
	case "lambda":
		lg.Info().Msg("iniciando em modo lambda")
		lambdaStarter(transport.NewLambdaHandler(handler).Handle)
		return nil
	default:
		lg.Info().
			Int("port", cfg.Server.Port).
			Str("apk", cfg.Server.APKPath).
			Int("slow_chunk", cfg.Server.SlowChunkSize).
			Dur("slow_delay", cfg.Server.SlowDelay).
			Msg("Mock update server iniciando")
		return serverStarter(ctx, transport.NewServer(cfg.Server.Port, handler, lg))
	}
}
