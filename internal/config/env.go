package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// FromEnv overlays KULYK_* environment variables onto cfg. A .env file in
// the working directory is loaded first when present; a missing file is
// not an error.
func FromEnv(cfg Config) (Config, error) {
	_ = godotenv.Load()
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
