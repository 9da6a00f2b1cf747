package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service. Zero values mean
// "unspecified" and are replaced by defaults in main.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr" envconfig:"KULYK_ADDR"`
	Environment string `json:"environment" yaml:"environment" toml:"environment" envconfig:"KULYK_ENVIRONMENT"`
	LogLevel    string `json:"log_level" yaml:"log_level" toml:"log_level" envconfig:"KULYK_LOG_LEVEL"`

	// Model weight files, one per direction.
	ModelUKEN string `json:"model_uk_en" yaml:"model_uk_en" toml:"model_uk_en" envconfig:"KULYK_MODEL_UK_EN"`
	ModelENUK string `json:"model_en_uk" yaml:"model_en_uk" toml:"model_en_uk" envconfig:"KULYK_MODEL_EN_UK"`

	// Generation parameters.
	CtxSize      int `json:"ctx_size" yaml:"ctx_size" toml:"ctx_size" envconfig:"KULYK_CTX_SIZE"`
	Threads      int `json:"threads" yaml:"threads" toml:"threads" envconfig:"KULYK_THREADS"`
	ThreadsBatch int `json:"threads_batch" yaml:"threads_batch" toml:"threads_batch" envconfig:"KULYK_THREADS_BATCH"`
	GPULayers    int `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers" envconfig:"KULYK_GPU_LAYERS"`
	Seed         int `json:"seed" yaml:"seed" toml:"seed" envconfig:"KULYK_SEED"`
	MaxNewTokens int `json:"max_new_tokens" yaml:"max_new_tokens" toml:"max_new_tokens" envconfig:"KULYK_MAX_NEW_TOKENS"`

	// Concurrency.
	PoolSize       int `json:"pool_size" yaml:"pool_size" toml:"pool_size" envconfig:"KULYK_POOL_SIZE"`
	MaxWaitSeconds int `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds" envconfig:"KULYK_MAX_WAIT_SECONDS"`

	// Behavior toggles.
	AllowDegraded  bool   `json:"allow_degraded" yaml:"allow_degraded" toml:"allow_degraded" envconfig:"KULYK_ALLOW_DEGRADED"`
	DetectLanguage bool   `json:"detect_language" yaml:"detect_language" toml:"detect_language" envconfig:"KULYK_DETECT_LANGUAGE"`
	CORSOrigins    string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" envconfig:"KULYK_CORS_ORIGINS"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// CORSOriginsList splits the comma-separated origins value, dropping
// empties and duplicates. An empty value means "allow any origin".
func (c Config) CORSOriginsList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		o := strings.TrimSpace(p)
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		origins = append(origins, o)
	}
	return origins
}
