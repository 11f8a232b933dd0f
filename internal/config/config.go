package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
}

type ServerConfig struct {
	Address             string `yaml:"address"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

type SessionConfig struct {
	CookieSecure bool `yaml:"cookie_secure"`
}

type StorageConfig struct {
	DatabaseURL         string `yaml:"database_url"`
	MaxOpenConns        int    `yaml:"max_open_conns"`
	MaxIdleConns        int    `yaml:"max_idle_conns"`
	QueryTimeoutSeconds int    `yaml:"query_timeout_seconds"`
}

type CacheConfig struct {
	RedisURL         string `yaml:"redis_url"`
	OpTimeoutSeconds int    `yaml:"op_timeout_seconds"`
}

// envOverrides are applied after the yaml file. The DSNs match what the
// deployment environment provides; the config file is optional when both
// are set.
type envOverrides struct {
	DatabaseURL string `env:"PG_DSN,default="`
	RedisURL    string `env:"REDIS_DSN,default="`
	Address     string `env:"AUTHD_ADDR,default="`
}

// Load reads the config file (if any), applies environment overrides and
// defaults, and validates the result. The returned path is empty when the
// service runs on environment and defaults alone.
func Load() (*Config, string, error) {
	path := os.Getenv("AUTHD_CONFIG")

	candidates := []string{}
	if path != "" {
		candidates = append(candidates, path)
	}
	candidates = append(candidates,
		"/etc/authd/config.yaml",
		"./config.yaml",
	)

	var selected string
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			selected = candidate
			break
		}
	}

	if selected != "" {
		loaded, err := LoadFromPath(selected)
		if err != nil {
			return nil, "", err
		}
		return loaded, selected, nil
	}

	cfg := &Config{}
	applyEnv(cfg)
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

// LoadFromPath reads a specific config file. Used by Load and by the reload
// watcher.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		return
	}
	if env.DatabaseURL != "" {
		cfg.Storage.DatabaseURL = env.DatabaseURL
	}
	if env.RedisURL != "" {
		cfg.Cache.RedisURL = env.RedisURL
	}
	if env.Address != "" {
		cfg.Server.Address = env.Address
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds == 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}

	if cfg.Cache.RedisURL == "" {
		// Local-development fallback only; deployments set REDIS_DSN.
		cfg.Cache.RedisURL = "redis://localhost:6379/0"
	}
	if cfg.Cache.OpTimeoutSeconds == 0 {
		cfg.Cache.OpTimeoutSeconds = 5
	}

	if cfg.Storage.MaxOpenConns == 0 {
		cfg.Storage.MaxOpenConns = 10
	}
	if cfg.Storage.MaxIdleConns == 0 {
		cfg.Storage.MaxIdleConns = 5
	}
	if cfg.Storage.QueryTimeoutSeconds == 0 {
		cfg.Storage.QueryTimeoutSeconds = 5
	}
}
