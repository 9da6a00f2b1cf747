package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/egorsmkv/kulyk-go/internal/config"
	"github.com/egorsmkv/kulyk-go/internal/engine"
	"github.com/egorsmkv/kulyk-go/internal/httpapi"
	"github.com/egorsmkv/kulyk-go/internal/logging"
	"github.com/egorsmkv/kulyk-go/internal/translator"
	"github.com/egorsmkv/kulyk-go/pkg/types"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "kulykd",
		Short:         "Ukrainian-English translation inference server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, configPath)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	f := root.Flags()
	f.StringVar(&configPath, "config", "", "Optional config file (yaml, json or toml)")
	f.String("addr", ":3000", "HTTP listen address")
	f.String("model-uk-en", "", "Path to the uk->en model file (GGUF)")
	f.String("model-en-uk", "", "Path to the en->uk model file (GGUF)")
	f.Int("ctx-size", 2048, "Context size in tokens (prompt + output)")
	f.Int("threads", 0, "Threads for single-token decode (0 = backend default)")
	f.Int("threads-batch", 0, "Threads for batch/prompt decode (0 = same as --threads)")
	f.Int("gpu-layers", 0, "Model layers to offload to the GPU")
	f.Int("seed", 1234, "Sampler RNG seed")
	f.Int("max-new-tokens", 0, "Default generation cap per request (0 = context capacity)")
	f.Int("pool-size", 1, "Decoding contexts per direction")
	f.Int("max-wait", 30, "Seconds a request may wait for a free context before 429")
	f.String("log-level", "info", "Log level: trace|debug|info|warn|error")
	f.String("environment", "local", "Environment name; 'local' enables console logs")
	f.Bool("allow-degraded", false, "Serve remaining direction when one model fails to load")
	f.Bool("detect-language", false, "Detect source_lang when the request omits it")
	f.String("cors-origins", "", "Comma-separated allowed CORS origins (empty = any)")

	return root
}

// resolveConfig merges, in increasing precedence: defaults, config file,
// KULYK_* environment, command-line flags.
func resolveConfig(cmd *cobra.Command, configPath string) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", configPath, err)
		}
		cfg = loaded
	}
	cfg, err := config.FromEnv(cfg)
	if err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}

	f := cmd.Flags()
	setStr := func(name string, dst *string) {
		if v, err := f.GetString(name); err == nil && (f.Changed(name) || *dst == "") {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v, err := f.GetInt(name); err == nil && (f.Changed(name) || *dst == 0) {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if f.Changed(name) {
			v, _ := f.GetBool(name)
			*dst = v
		}
	}
	setStr("addr", &cfg.Addr)
	setStr("model-uk-en", &cfg.ModelUKEN)
	setStr("model-en-uk", &cfg.ModelENUK)
	setInt("ctx-size", &cfg.CtxSize)
	setInt("threads", &cfg.Threads)
	setInt("threads-batch", &cfg.ThreadsBatch)
	setInt("gpu-layers", &cfg.GPULayers)
	setInt("seed", &cfg.Seed)
	setInt("max-new-tokens", &cfg.MaxNewTokens)
	setInt("pool-size", &cfg.PoolSize)
	setInt("max-wait", &cfg.MaxWaitSeconds)
	setStr("log-level", &cfg.LogLevel)
	setStr("environment", &cfg.Environment)
	setBool("allow-degraded", &cfg.AllowDegraded)
	setBool("detect-language", &cfg.DetectLanguage)
	setStr("cors-origins", &cfg.CORSOrigins)

	if cfg.ModelUKEN == "" && cfg.ModelENUK == "" {
		return cfg, fmt.Errorf("no model configured: set --model-uk-en and --model-en-uk")
	}
	return cfg, nil
}

func run(cfg config.Config) error {
	log, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}

	var models []translator.ModelConfig
	if cfg.ModelUKEN != "" {
		models = append(models, translator.ModelConfig{Direction: types.DirectionUKEN, Path: cfg.ModelUKEN})
	}
	if cfg.ModelENUK != "" {
		models = append(models, translator.ModelConfig{Direction: types.DirectionENUK, Path: cfg.ModelENUK})
	}

	tr, err := translator.New(engine.New(), translator.Config{
		Models:        models,
		ContextSize:   cfg.CtxSize,
		Threads:       cfg.Threads,
		ThreadsBatch:  cfg.ThreadsBatch,
		GPULayers:     cfg.GPULayers,
		Seed:          cfg.Seed,
		PoolSize:      cfg.PoolSize,
		MaxNewTokens:  cfg.MaxNewTokens,
		MaxWait:       time.Duration(cfg.MaxWaitSeconds) * time.Second,
		AllowDegraded: cfg.AllowDegraded,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("start translator: %w", err)
	}
	defer tr.Close()

	mux := httpapi.NewMux(tr, httpapi.Options{
		Logger:         log,
		CORSOrigins:    cfg.CORSOriginsList(),
		DetectLanguage: cfg.DetectLanguage,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("kulykd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
