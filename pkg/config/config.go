package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "SMARTLAW"

type Config struct {
	App AppConfig
	DB  DBConfig
}

type AppConfig struct {
	Env      string `envconfig:"SMARTLAW_APP_ENV" default:"dev"`
	Port     string `envconfig:"SMARTLAW_APP_PORT" default:"3000"`
	LogLevel string `envconfig:"SMARTLAW_LOG_LEVEL" default:"info"`

	// StorageKey is the single key the whole aggregate is persisted under.
	StorageKey string `envconfig:"SMARTLAW_STORAGE_KEY" default:"smartlaw-crm-data"`
}

type DBConfig struct {
	// DSN selects Postgres when set; otherwise the service runs on a local
	// SQLite file, which is the expected single-tenant setup.
	DSN  string `envconfig:"SMARTLAW_DATABASE_URL"`
	Path string `envconfig:"SMARTLAW_DB_PATH" default:"smartlaw.db"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
