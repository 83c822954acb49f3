// Package config defines process configuration and its loading.
//
// Precedence (low -> high): built-in defaults, YAML file named by
// RANKBOOK_CONFIG, environment variables with the RANKBOOK_ prefix. The cmd
// entrypoints load a .env file first, so a local .env feeds the env layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Storage adapter names.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config holds everything the tools consume.
type Config struct {
	// APIKey authenticates against the upstream API.
	APIKey string `koanf:"api_key"`

	// Region is the default platform routing value, e.g. "euw1".
	Region string `koanf:"region"`

	// BaseURLTemplate is the region-templated upstream base URL.
	BaseURLTemplate string `koanf:"base_url_template"`

	// Endpoint path templates, keyed the way the client expects.
	SummonerEndpoint string `koanf:"summoner_endpoint"`
	LeagueEndpoint   string `koanf:"league_endpoint"`
	MasteryEndpoint  string `koanf:"mastery_endpoint"`

	// Storage selects the leaderboard blob adapter: file, memory or redis.
	Storage string `koanf:"storage"`

	// FileDir is the blob directory for the file adapter.
	FileDir string `koanf:"file_dir"`

	// Redis connection settings for the redis adapter.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// WebhookURL, when set, receives top-ten entry notifications.
	WebhookURL string `koanf:"webhook_url"`

	// MetricsAddr, when set, serves /metrics from the refresh daemon.
	MetricsAddr string `koanf:"metrics_addr"`

	// RefreshInterval is the pause between refresh sweeps.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// RefreshWorkers bounds concurrent lookups inside one sweep.
	RefreshWorkers int `koanf:"refresh_workers"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Region:           "euw1",
		BaseURLTemplate:  "https://{region}.api.riotgames.com",
		SummonerEndpoint: "/lol/summoner/v4/summoners/by-name/{name}",
		LeagueEndpoint:   "/lol/league/v4/entries/by-summoner/{summonerId}",
		MasteryEndpoint:  "/lol/champion-mastery/v4/champion-masteries/by-summoner/{summonerId}",
		Storage:          StorageFile,
		FileDir:          "data",
		RefreshInterval:  30 * time.Minute,
		RefreshWorkers:   4,
		LogLevel:         "info",
	}
}

// Load builds a Config by layering defaults, an optional YAML file and the
// environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("RANKBOOK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// RANKBOOK_API_KEY -> api_key and so on; underscores preserved to
	// match the koanf tags above.
	envProvider := env.Provider("RANKBOOK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "rankbook_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the combinations the tools cannot run without.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("api_key must be set (RANKBOOK_API_KEY)")
	}
	if c.Region == "" {
		return errors.New("region must not be empty")
	}
	switch c.Storage {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr must be set for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage adapter %q", c.Storage)
	}
	if c.RefreshWorkers < 1 {
		return errors.New("refresh_workers must be at least 1")
	}
	return nil
}
