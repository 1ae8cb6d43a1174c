package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the dashboard configuration. Values are resolved in order:
// defaults, YAML file, environment, command-line flags.
type Config struct {
	Addr            string          `yaml:"addr"`
	Data            string          `yaml:"data"`
	DefaultMake     string          `yaml:"default_make"`
	LogLevel        string          `yaml:"log_level"`
	LogFormat       string          `yaml:"log_format"`
	CORSOrigin      string          `yaml:"cors_origin"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	SessionCapacity int             `yaml:"session_capacity"`
	NATSURL         string          `yaml:"nats_url"`
	Neo4j           Neo4jConfig     `yaml:"neo4j"`
	S3              S3Config        `yaml:"s3"`
	OTelServiceName string          `yaml:"otel_service_name"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
}

// RateLimitConfig is the per-client HTTP rate limit. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Neo4jConfig is used by graph-sync.
type Neo4jConfig struct {
	URL  string `yaml:"url"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

// S3Config tunes the client used for s3:// dataset locations.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

func defaultConfig() Config {
	return Config{
		Addr:            ":8050",
		Data:            "data/sport_car_price.csv",
		LogLevel:        "info",
		LogFormat:       "json",
		CORSOrigin:      "",
		RateLimit:       RateLimitConfig{RPS: 20, Burst: 40},
		SessionCapacity: 1024,
		Neo4j:           Neo4jConfig{URL: "neo4j://localhost:7687", User: "neo4j"},
		OTelServiceName: "sportscar-dash",
		ShutdownTimeout: 10 * time.Second,
	}
}

// loadConfig reads path over the defaults and applies the environment. A
// missing file is only an error when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func applyEnv(cfg *Config) error {
	cfg.Addr = envOr("DASH_ADDR", cfg.Addr)
	if p := os.Getenv("PORT"); p != "" {
		cfg.Addr = ":" + p
	}
	cfg.Data = envOr("DASH_DATA", cfg.Data)
	cfg.DefaultMake = envOr("DASH_DEFAULT_MAKE", cfg.DefaultMake)
	cfg.LogLevel = envOr("DASH_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("DASH_LOG_FORMAT", cfg.LogFormat)
	cfg.CORSOrigin = envOr("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.NATSURL = envOr("NATS_URL", cfg.NATSURL)
	cfg.Neo4j.URL = envOr("NEO4J_URL", cfg.Neo4j.URL)
	cfg.Neo4j.User = envOr("NEO4J_USER", cfg.Neo4j.User)
	cfg.Neo4j.Pass = envOr("NEO4J_PASS", cfg.Neo4j.Pass)
	cfg.S3.Region = envOr("AWS_REGION", cfg.S3.Region)
	cfg.S3.Endpoint = envOr("DASH_S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.OTelServiceName = envOr("OTEL_SERVICE_NAME", cfg.OTelServiceName)

	var errs []string
	if v := os.Getenv("DASH_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("DASH_RATE_LIMIT_RPS: %v", err))
		}
		cfg.RateLimit.RPS = f
	}
	if v := os.Getenv("DASH_SESSION_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("DASH_SESSION_CAPACITY: %v", err))
		}
		cfg.SessionCapacity = n
	}
	if v := os.Getenv("DASH_S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("DASH_S3_PATH_STYLE: %v", err))
		}
		cfg.S3.PathStyle = b
	}
	if len(errs) > 0 {
		return fmt.Errorf("environment:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Validate checks all fields and returns all errors at once.
func (c Config) Validate() error {
	var errs []string

	if c.Addr == "" {
		errs = append(errs, "addr: must not be empty")
	}
	if c.Data == "" {
		errs = append(errs, "data: must not be empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("log_level: %v", err))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log_format: invalid value %q (must be json or text)", c.LogFormat))
	}
	if c.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Sprintf("rate_limit.rps: must be non-negative, got %g", c.RateLimit.RPS))
	}
	if c.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Sprintf("rate_limit.burst: must be non-negative, got %d", c.RateLimit.Burst))
	}
	if c.SessionCapacity < 0 {
		errs = append(errs, fmt.Sprintf("session_capacity: must be non-negative, got %d", c.SessionCapacity))
	}
	if c.NATSURL != "" {
		if u, err := url.Parse(c.NATSURL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Sprintf("nats_url: invalid URL %q", c.NATSURL))
		}
	}
	if c.Neo4j.URL != "" {
		if u, err := url.Parse(c.Neo4j.URL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Sprintf("neo4j.url: invalid URL %q", c.Neo4j.URL))
		}
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Sprintf("shutdown_timeout: must be non-negative, got %s", c.ShutdownTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid value %q (must be debug, info, warn or error)", s)
	}
	return l, nil
}
