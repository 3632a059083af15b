package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Initialize loads, validates, and returns ready-to-use configuration. This
// is the primary entry point, called once from the composition root.
//
// Steps: load coe.yaml, expand ${VAR} references, parse YAML, resolve
// env-sourced secrets and durations, apply built-in defaults, validate.
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("loading configuration")

	raw, err := loadYAML(configDir)
	if err != nil {
		return nil, NewLoadError("coe.yaml", err)
	}

	cfg, err := resolve(configDir, raw)
	if err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("configuration loaded",
		"redis_enabled", cfg.Redis.Enabled,
		"llm_provider", cfg.LLM.Provider,
		"tts_enabled", cfg.TTS.Enabled,
		"retrieval_enabled", cfg.Retrieval.Enabled)

	return cfg, nil
}

func loadYAML(configDir string) (*YAMLConfig, error) {
	path := filepath.Join(configDir, "coe.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	data = ExpandEnv(data)

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &cfg, nil
}

// resolve converts the YAML-shaped config into the typed Config, parsing
// durations and dereferencing env-indirected secrets (API keys, DSNs,
// passwords are never written directly into coe.yaml).
func resolve(configDir string, y *YAMLConfig) (*Config, error) {
	cfg := &Config{configDir: configDir}

	if y.Server != nil {
		cfg.Server.Host = y.Server.Host
		cfg.Server.Port = y.Server.Port
		cfg.Server.ShutdownTimeout = parseDuration("server.shutdown_timeout", y.Server.ShutdownTimeout, DefaultShutdownTimeout)
	}

	if y.Database != nil {
		cfg.Database.DSN = os.Getenv(orDefault(y.Database.DSNEnv, "DATABASE_URL"))
		cfg.Database.MaxConns = y.Database.MaxConns
		cfg.Database.MinConns = y.Database.MinConns
		cfg.Database.MigrationsPath = y.Database.MigrationsPath
		cfg.Database.ConnectTimeout = parseDuration("database.connect_timeout", y.Database.ConnectTimeout, DefaultDBConnectTimeout)
	}

	if y.Redis != nil {
		cfg.Redis.Enabled = y.Redis.Enabled
		cfg.Redis.Addr = os.Getenv(orDefault(y.Redis.AddrEnv, "REDIS_ADDR"))
		cfg.Redis.DB = y.Redis.DB
		cfg.Redis.Password = os.Getenv(orDefault(y.Redis.PassEnv, "REDIS_PASSWORD"))
	}

	if y.Session != nil {
		if y.Session.TTLSeconds > 0 {
			cfg.Session.TTL = time.Duration(y.Session.TTLSeconds) * time.Second
		}
		cfg.Session.MaxHistoryTurns = y.Session.MaxHistoryTurns
		if y.Session.AbandonedSweepSeconds > 0 {
			cfg.Session.AbandonedSweep = time.Duration(y.Session.AbandonedSweepSeconds) * time.Second
		}
	}

	if y.LLM != nil {
		cfg.LLM.Provider = y.LLM.Provider
		cfg.LLM.APIKey = os.Getenv(orDefault(y.LLM.APIKeyEnv, "ANTHROPIC_API_KEY"))
		cfg.LLM.Model = y.LLM.Model
		cfg.LLM.MaxTokens = y.LLM.MaxTokens
		if y.LLM.TimeoutSeconds > 0 {
			cfg.LLM.Timeout = time.Duration(y.LLM.TimeoutSeconds) * time.Second
		}
	}

	if y.TTS != nil {
		cfg.TTS.Enabled = y.TTS.Enabled
		cfg.TTS.BaseURL = y.TTS.BaseURL
		cfg.TTS.APIKey = os.Getenv(orDefault(y.TTS.APIKeyEnv, "TTS_API_KEY"))
		if y.TTS.TimeoutSeconds > 0 {
			cfg.TTS.Timeout = time.Duration(y.TTS.TimeoutSeconds) * time.Second
		}
	}

	if y.Retrieval != nil {
		cfg.Retrieval.Enabled = y.Retrieval.Enabled
		cfg.Retrieval.BaseURL = y.Retrieval.BaseURL
		cfg.Retrieval.APIKey = os.Getenv(orDefault(y.Retrieval.APIKeyEnv, "RETRIEVAL_API_KEY"))
		cfg.Retrieval.TopK = y.Retrieval.TopK
		if y.Retrieval.TimeoutSeconds > 0 {
			cfg.Retrieval.Timeout = time.Duration(y.Retrieval.TimeoutSeconds) * time.Second
		}
	}

	if y.RateLimit != nil {
		cfg.RateLimit.LoginPerMinute = y.RateLimit.LoginPerMinute
		cfg.RateLimit.GraphQLPerMinute = y.RateLimit.GraphQLPerMinute
		cfg.RateLimit.HealthPerMinute = y.RateLimit.HealthPerMinute
	}

	if y.Classifier != nil {
		cfg.Classifier.ConfidenceFloor = y.Classifier.ConfidenceFloor
		cfg.Classifier.MaxTransferCount = y.Classifier.MaxTransferCount
		cfg.Classifier.MaxRepeatedEdge = y.Classifier.MaxRepeatedEdge
	}

	if y.Auth != nil {
		cfg.Auth.HMACSecret = []byte(os.Getenv(orDefault(y.Auth.HMACSecretEnv, "AUTH_HMAC_SECRET")))
		cfg.Auth.TokenTTL = parseDuration("auth.token_ttl", y.Auth.TokenTTL, DefaultAuthTokenTTL)
	}

	if y.Logging != nil {
		cfg.Logging.Level = y.Logging.Level
		cfg.Logging.Format = y.Logging.Format
	}

	return cfg, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func parseDuration(field, raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration in config, using default", "field", field, "value", raw, "default", def)
		return def
	}
	return d
}
