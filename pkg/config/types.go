package config

import "time"

// YAMLConfig is the complete coe.yaml file structure.
type YAMLConfig struct {
	Server     *ServerYAML     `yaml:"server"`
	Database   *DatabaseYAML   `yaml:"database"`
	Redis      *RedisYAML      `yaml:"redis"`
	Session    *SessionYAML    `yaml:"session"`
	LLM        *LLMYAML        `yaml:"llm"`
	TTS        *TTSYAML        `yaml:"tts"`
	Retrieval  *RetrievalYAML  `yaml:"retrieval"`
	RateLimit  *RateLimitYAML  `yaml:"rate_limit"`
	Classifier *ClassifierYAML `yaml:"classifier"`
	Auth       *AuthYAML       `yaml:"auth"`
	Logging    *LoggingYAML    `yaml:"logging"`
}

type ServerYAML struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type DatabaseYAML struct {
	DSNEnv          string `yaml:"dsn_env"`
	MaxConns        int32  `yaml:"max_conns"`
	MinConns        int32  `yaml:"min_conns"`
	MigrationsPath  string `yaml:"migrations_path"`
	ConnectTimeout  string `yaml:"connect_timeout"`
}

type RedisYAML struct {
	Enabled  bool   `yaml:"enabled"`
	AddrEnv  string `yaml:"addr_env"`
	DB       int    `yaml:"db"`
	PassEnv  string `yaml:"pass_env"`
}

type SessionYAML struct {
	TTLSeconds            int `yaml:"ttl_seconds"`
	MaxHistoryTurns       int `yaml:"max_history_turns"`
	AbandonedSweepSeconds int `yaml:"abandoned_sweep_seconds"`
}

type LLMYAML struct {
	Provider       string `yaml:"provider"`
	APIKeyEnv      string `yaml:"api_key_env"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxTokens      int    `yaml:"max_tokens"`
}

type TTSYAML struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RetrievalYAML struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	TopK           int    `yaml:"top_k"`
}

type RateLimitYAML struct {
	LoginPerMinute   int `yaml:"login_per_minute"`
	GraphQLPerMinute int `yaml:"graphql_per_minute"`
	HealthPerMinute  int `yaml:"health_per_minute"`
}

type ClassifierYAML struct {
	ConfidenceFloor   float64 `yaml:"confidence_floor"`
	MaxTransferCount  int     `yaml:"max_transfer_count"`
	MaxRepeatedEdge   int     `yaml:"max_repeated_edge"`
}

type AuthYAML struct {
	HMACSecretEnv string `yaml:"hmac_secret_env"`
	TokenTTL      string `yaml:"token_ttl"`
}

type LoggingYAML struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the resolved, validated, ready-to-use configuration object
// built from YAMLConfig plus built-in defaults.
type Config struct {
	configDir string

	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	LLM        LLMConfig
	TTS        TTSConfig
	Retrieval  RetrievalConfig
	RateLimit  RateLimitConfig
	Classifier ClassifierConfig
	Auth       AuthConfig
	Logging    LoggingConfig
}

func (c *Config) ConfigDir() string { return c.configDir }

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	MigrationsPath string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	DB       int
	Password string
}

type SessionConfig struct {
	TTL             time.Duration
	MaxHistoryTurns int
	AbandonedSweep  time.Duration
}

type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	Timeout  time.Duration
	MaxTokens int
}

type TTSConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type RetrievalConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration
	TopK    int
}

type RateLimitConfig struct {
	LoginPerMinute   int
	GraphQLPerMinute int
	HealthPerMinute  int
}

type ClassifierConfig struct {
	ConfidenceFloor  float64
	MaxTransferCount int
	MaxRepeatedEdge  int
}

type AuthConfig struct {
	HMACSecret []byte
	TokenTTL   time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}
