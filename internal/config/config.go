// Package config loads service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/score"
)

// Config holds all application configuration.
type Config struct {
	Provider struct {
		BaseURL    string        `yaml:"base_url"`
		APIKey     string        `yaml:"api_key"`
		WSEndpoint string        `yaml:"ws_endpoint"`
		PageSize   int           `yaml:"page_size"`
		Timeout    time.Duration `yaml:"timeout"`
		MaxRetries int           `yaml:"max_retries"`
	} `yaml:"provider"`

	Analysis struct {
		ScoreProfile      string   `yaml:"score_profile"`
		BaseMint          string   `yaml:"base_mint"`
		ExcludedMints     []string `yaml:"excluded_mints"`
		DustThreshold     float64  `yaml:"dust_threshold"`
		MinPrice          float64  `yaml:"min_price"`
		MaxPrice          float64  `yaml:"max_price"`
		MaxTradeSize      float64  `yaml:"max_trade_size"`
		CloseTolerance    float64  `yaml:"close_tolerance"`
		RugThreshold      float64  `yaml:"rug_threshold"`
		MoonshotThreshold float64  `yaml:"moonshot_threshold"`
	} `yaml:"analysis"`

	Storage struct {
		Backend       string `yaml:"backend"` // memory | postgres | clickhouse
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickhouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"storage"`

	Cache struct {
		RedisAddr string        `yaml:"redis_addr"` // empty disables caching
		Prefix    string        `yaml:"prefix"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	Snapshot struct {
		Schedule string   `yaml:"schedule"` // cron spec
		Wallets  []string `yaml:"wallets"`
	} `yaml:"snapshot"`

	Server struct {
		ListenAddr  string `yaml:"listen_addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`

	Verbose bool `yaml:"verbose"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; everything can
// come from the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("PROVIDER_WS_ENDPOINT"); v != "" {
		cfg.Provider.WSEndpoint = v
	}
	if v := os.Getenv("SCORE_PROFILE"); v != "" {
		cfg.Analysis.ScoreProfile = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SNAPSHOT_SCHEDULE"); v != "" {
		cfg.Snapshot.Schedule = v
	}
	if v := os.Getenv("SNAPSHOT_WALLETS"); v != "" {
		cfg.Snapshot.Wallets = splitList(v)
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}

	// Defaults
	if cfg.Provider.PageSize == 0 {
		cfg.Provider.PageSize = 100
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 30 * time.Second
	}
	if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = 3
	}
	if cfg.Analysis.ScoreProfile == "" {
		cfg.Analysis.ScoreProfile = score.ProfileNeutral
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "degenscore"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Snapshot.Schedule == "" {
		cfg.Snapshot.Schedule = "0 * * * *"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = ":9090"
	}

	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if _, err := score.FromName(c.Analysis.ScoreProfile); err != nil {
		return fmt.Errorf("analysis.score_profile: %w", err)
	}
	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	case "clickhouse":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the clickhouse backend")
		}
		if c.Storage.ClickhouseDSN == "" {
			return fmt.Errorf("storage.clickhouse_dsn is required for the clickhouse backend")
		}
	default:
		return fmt.Errorf("storage.backend must be memory, postgres or clickhouse, got %q", c.Storage.Backend)
	}
	return nil
}

// AnalysisConfig converts the analysis section into pipeline thresholds,
// filling unset fields with defaults.
func (c *Config) AnalysisConfig() domain.AnalysisConfig {
	ac := domain.DefaultAnalysisConfig()
	ac.ScoreProfile = c.Analysis.ScoreProfile
	if c.Analysis.BaseMint != "" {
		ac.BaseMint = c.Analysis.BaseMint
	}
	if len(c.Analysis.ExcludedMints) > 0 {
		ac.ExcludedMints = c.Analysis.ExcludedMints
	}
	if c.Analysis.DustThreshold != 0 {
		ac.DustThreshold = c.Analysis.DustThreshold
	}
	if c.Analysis.MinPrice != 0 {
		ac.MinPrice = c.Analysis.MinPrice
	}
	if c.Analysis.MaxPrice != 0 {
		ac.MaxPrice = c.Analysis.MaxPrice
	}
	if c.Analysis.MaxTradeSize != 0 {
		ac.MaxTradeSize = c.Analysis.MaxTradeSize
	}
	if c.Analysis.CloseTolerance != 0 {
		ac.CloseTolerance = c.Analysis.CloseTolerance
	}
	if c.Analysis.RugThreshold != 0 {
		ac.RugThreshold = c.Analysis.RugThreshold
	}
	if c.Analysis.MoonshotThreshold != 0 {
		ac.MoonshotThreshold = c.Analysis.MoonshotThreshold
	}
	return ac
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
