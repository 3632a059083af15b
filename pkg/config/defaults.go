package config

import "time"

// Built-in defaults, applied for any value left unset in coe.yaml. Mirrors
// spec.md §5's stated budgets so a bare-bones coe.yaml still produces a
// conforming service.
const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultShutdownTimeout       = 10 * time.Second
	DefaultDBMaxConns      int32 = 10
	DefaultDBMinConns      int32 = 2
	DefaultDBConnectTimeout      = 5 * time.Second
	DefaultMigrationsPath       = "file://migrations"

	DefaultRedisDB = 0

	DefaultSessionTTL             = 1800 * time.Second
	DefaultMaxHistoryTurns        = 20
	DefaultAbandonedSweepInterval = 300 * time.Second

	DefaultLLMClassifyTimeout = 5 * time.Second
	DefaultLLMMessageTimeout  = 10 * time.Second
	DefaultLLMMaxTokens       = 1024

	DefaultTTSTimeout        = 3 * time.Second
	DefaultRetrievalTimeout  = 5 * time.Second
	DefaultRetrievalTopK     = 3
	DefaultCatalogTimeout    = 5 * time.Second
	DefaultSessionOpTimeout  = 5 * time.Second
	DefaultTranscriptTimeout = 5 * time.Second

	DefaultLoginRatePerMinute   = 5
	DefaultGraphQLRatePerMinute = 30
	DefaultHealthRatePerMinute  = 100

	DefaultConfidenceFloor  = 0.45
	DefaultMaxTransferCount = 3
	DefaultMaxRepeatedEdge  = 2

	DefaultAuthTokenTTL = 24 * time.Hour

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// applyDefaults fills a Config's zero-valued fields with the built-in
// defaults above. YAML-sourced values always win; this only fills gaps.
func applyDefaults(c *Config) {
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultDBMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultDBMinConns
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = DefaultDBConnectTimeout
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = DefaultMigrationsPath
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = DefaultSessionTTL
	}
	if c.Session.MaxHistoryTurns == 0 {
		c.Session.MaxHistoryTurns = DefaultMaxHistoryTurns
	}
	if c.Session.AbandonedSweep == 0 {
		c.Session.AbandonedSweep = DefaultAbandonedSweepInterval
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = DefaultLLMClassifyTimeout
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = DefaultLLMMaxTokens
	}
	if c.TTS.Timeout == 0 {
		c.TTS.Timeout = DefaultTTSTimeout
	}
	if c.Retrieval.Timeout == 0 {
		c.Retrieval.Timeout = DefaultRetrievalTimeout
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = DefaultRetrievalTopK
	}
	if c.RateLimit.LoginPerMinute == 0 {
		c.RateLimit.LoginPerMinute = DefaultLoginRatePerMinute
	}
	if c.RateLimit.GraphQLPerMinute == 0 {
		c.RateLimit.GraphQLPerMinute = DefaultGraphQLRatePerMinute
	}
	if c.RateLimit.HealthPerMinute == 0 {
		c.RateLimit.HealthPerMinute = DefaultHealthRatePerMinute
	}
	if c.Classifier.ConfidenceFloor == 0 {
		c.Classifier.ConfidenceFloor = DefaultConfidenceFloor
	}
	if c.Classifier.MaxTransferCount == 0 {
		c.Classifier.MaxTransferCount = DefaultMaxTransferCount
	}
	if c.Classifier.MaxRepeatedEdge == 0 {
		c.Classifier.MaxRepeatedEdge = DefaultMaxRepeatedEdge
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = DefaultAuthTokenTTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
