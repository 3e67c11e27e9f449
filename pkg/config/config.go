package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"

	StateBackendFile  = "file"
	StateBackendRedis = "redis"
)

type Config struct {
	App   AppConfig
	API   APIConfig
	State StateConfig
	Stub  StubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.State.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL   string        `envconfig:"STOREFRONT_API_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"STOREFRONT_API_USER_AGENT" default:"storefront-sdk"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api base url must be http(s), got %q", a.BaseURL)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	return nil
}

// StateConfig selects where the persisted session snapshot lives. The file
// backend is the default; the redis backend serves shared kiosk sessions.
type StateConfig struct {
	Backend  string        `envconfig:"STOREFRONT_STATE_BACKEND" default:"file"`
	FilePath string        `envconfig:"STOREFRONT_STATE_FILE" default:"storefront-state.json"`
	RedisURL string        `envconfig:"STOREFRONT_STATE_REDIS_URL"`
	RedisTTL time.Duration `envconfig:"STOREFRONT_STATE_REDIS_TTL" default:"720h"`
	Session  string        `envconfig:"STOREFRONT_STATE_SESSION" default:"default"`
}

func (s StateConfig) validate() error {
	switch s.Backend {
	case StateBackendFile:
		if strings.TrimSpace(s.FilePath) == "" {
			return fmt.Errorf("state file path is required for the file backend")
		}
	case StateBackendRedis:
		if strings.TrimSpace(s.RedisURL) == "" {
			return fmt.Errorf("redis url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q", s.Backend)
	}
	return nil
}

type StubConfig struct {
	Port string `envconfig:"STOREFRONT_STUB_PORT" default:"8089"`
}
