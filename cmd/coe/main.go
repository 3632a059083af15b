// Command coe runs the Conversational Orchestration Engine HTTP server:
// it loads configuration, wires every storage/transport/LLM collaborator,
// and serves the API described in SPEC_FULL.md §6 until a shutdown signal
// arrives.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tarsy-labs/storefront-coe/pkg/agents"
	"github.com/tarsy-labs/storefront-coe/pkg/api"
	"github.com/tarsy-labs/storefront-coe/pkg/catalog"
	"github.com/tarsy-labs/storefront-coe/pkg/classifier"
	"github.com/tarsy-labs/storefront-coe/pkg/comparator"
	"github.com/tarsy-labs/storefront-coe/pkg/config"
	"github.com/tarsy-labs/storefront-coe/pkg/database"
	"github.com/tarsy-labs/storefront-coe/pkg/health"
	"github.com/tarsy-labs/storefront-coe/pkg/llmprovider"
	"github.com/tarsy-labs/storefront-coe/pkg/orchestrator"
	"github.com/tarsy-labs/storefront-coe/pkg/orderbook"
	"github.com/tarsy-labs/storefront-coe/pkg/ratelimit"
	"github.com/tarsy-labs/storefront-coe/pkg/retrieval"
	"github.com/tarsy-labs/storefront-coe/pkg/scriptpipeline"
	"github.com/tarsy-labs/storefront-coe/pkg/session"
	"github.com/tarsy-labs/storefront-coe/pkg/sweeper"
	"github.com/tarsy-labs/storefront-coe/pkg/transcript"
	"github.com/tarsy-labs/storefront-coe/pkg/ttsprovider"
	"github.com/tarsy-labs/storefront-coe/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	bootLog := slog.New(slog.NewTextHandler(os.Stdout, nil))

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		bootLog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		bootLog.Info("loaded environment file", "path", envPath)
	}

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		bootLog.Error("failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	logger.Info("starting "+version.AppName, "version", version.Full(), "config_dir", *configDir)

	dbClient, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbClient.Close()
	logger.Info("connected to postgres")

	var redisClient redis.Cmdable
	if cfg.Redis.Enabled {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rc.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis not reachable at startup, continuing anyway", "error", err)
		}
		cancel()
		redisClient = rc
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	}

	// Session store: Redis-backed when enabled, in-memory (swept) otherwise.
	var sessionStore session.Store
	var sweep *sweeper.Service
	sessCfg := session.Config{TTL: cfg.Session.TTL}
	if cfg.Redis.Enabled {
		sessionStore = session.NewRedisStore(redisClient, sessCfg)
	} else {
		mem := session.NewMemoryStore(sessCfg)
		sessionStore = mem
		sweep = sweeper.NewService(mem, cfg.Session.AbandonedSweep, logger)
		sweep.Start(ctx)
		logger.Info("using in-memory session store with background sweeper")
	}

	transcripts := transcript.NewStore(dbClient.Pool)
	cat := catalog.NewCatalog(dbClient.Pool)
	orderBook := orderbook.NewOrderBook(dbClient.Pool)

	llm, err := llmprovider.NewAnthropicProvider(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens)
	if err != nil {
		logger.Error("failed to create LLM provider", "error", err)
		os.Exit(1)
	}

	var tts ttsprovider.Provider = ttsprovider.NoopProvider{}
	if cfg.TTS.Enabled {
		tts = ttsprovider.NewHTTPProvider(ttsprovider.Config{
			BaseURL: cfg.TTS.BaseURL,
			APIKey:  cfg.TTS.APIKey,
			Timeout: cfg.TTS.Timeout,
		}, logger)
	}

	var retriever retrieval.Retriever
	if cfg.Retrieval.Enabled {
		retriever = retrieval.NewHTTPRetriever(retrieval.Config{
			BaseURL: cfg.Retrieval.BaseURL,
			APIKey:  cfg.Retrieval.APIKey,
			Timeout: cfg.Retrieval.Timeout,
		})
	}

	cls := classifier.New(llm, logger)

	comp := comparator.New()
	pipeline := scriptpipeline.New(scriptpipeline.Deps{
		Catalog:     cat,
		Comparator:  comp,
		OrderBook:   orderBook,
		Sessions:    sessionStore,
		Transcripts: transcripts,
		LLM:         llm,
		TTS:         tts,
		Logger:      logger,
	})

	registry := map[agents.Name]agents.Agent{
		agents.NameRetriever: agents.NewRetriever(cat, retriever, logger),
		agents.NameSales:     agents.NewSales(sessionStore, pipeline, retriever, llm, logger),
		agents.NameCheckout:  agents.NewCheckout(orderBook, logger),
	}

	orch := orchestrator.New(sessionStore, transcripts, cls, registry, logger)

	healthMon := health.NewMonitor(map[string]health.Checker{
		"database": func(ctx context.Context) error { return dbClient.Pool.Ping(ctx) },
		"session":  sessionStore.HealthCheck,
	}, logger)
	healthMon.Start(ctx)
	defer healthMon.Stop()

	var limiter *ratelimit.Limiter
	if cfg.Redis.Enabled {
		limiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit)
	}

	auth := api.NewHMACAuth(cfg.Auth.HMACSecret, cfg.Auth.TokenTTL)

	server := api.NewServer(cfg, orch, pipeline, cat, orderBook, transcripts, healthMon, limiter, auth, tts, logger)
	if err := server.ValidateWiring(); err != nil {
		logger.Error("server wiring incomplete", "error", err)
		os.Exit(1)
	}

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if sweep != nil {
		sweep.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}
