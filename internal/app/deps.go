package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"legal-navigator/internal/analysis"
	"legal-navigator/internal/cache"
	"legal-navigator/internal/config"
	"legal-navigator/internal/llm"
	"legal-navigator/internal/logger"
	"legal-navigator/internal/queue"
	"legal-navigator/internal/recorder"
	"legal-navigator/internal/retry"
	"legal-navigator/internal/store"
)

// Deps bundles the runtime dependencies of the HTTP server.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Analyzer *analysis.Analyzer
	Store    store.Store // nil when STORE_PROVIDER=none
	Recorder recorder.Recorder
	Cache    cache.Cache

	closers []func() error
}

// RecorderDeps bundles what the recorder worker needs.
type RecorderDeps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue

	closers []func() error
}

// Close releases connections opened by Build.
func (d Deps) Close() error { return closeAll(d.closers) }

// Close releases connections opened by BuildRecorder.
func (d RecorderDeps) Close() error { return closeAll(d.closers) }

// Build loads env, config, and every component the server uses.
func Build(ctx context.Context) (Deps, error) {
	if err := loadEnv(); err != nil {
		return Deps{}, err
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	analyzer, _, err := BuildAnalyzer(ctx, cfg, log)
	if err != nil {
		return Deps{}, err
	}

	deps := Deps{Config: cfg, Log: log, Analyzer: analyzer}

	st, closeStore, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	deps.Store = st
	deps.closers = appendCloser(deps.closers, closeStore)

	q, closeQueue, err := buildQueue(cfg, log)
	if err != nil {
		_ = deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	deps.closers = appendCloser(deps.closers, closeQueue)
	deps.Recorder = buildRecorder(st, q, log)

	c, err := buildCache(cfg, log)
	if err != nil {
		_ = deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	deps.Cache = c
	deps.closers = append(deps.closers, c.Close)

	return deps, nil
}

// BuildRecorder loads the store and queue the recorder worker consumes
// from. Both are required.
func BuildRecorder() (RecorderDeps, error) {
	if err := loadEnv(); err != nil {
		return RecorderDeps{}, err
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, closeStore, err := buildStore(cfg, log)
	if err != nil {
		return RecorderDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	if st == nil {
		return RecorderDeps{}, fmt.Errorf("recorder requires STORE_PROVIDER=postgres")
	}
	deps := RecorderDeps{Config: cfg, Log: log, Store: st}
	deps.closers = appendCloser(deps.closers, closeStore)

	q, closeQueue, err := buildQueue(cfg, log)
	if err != nil {
		_ = deps.Close()
		return RecorderDeps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	if q == nil {
		_ = deps.Close()
		return RecorderDeps{}, fmt.Errorf("recorder requires QUEUE_PROVIDER=nats")
	}
	deps.Queue = q
	deps.closers = appendCloser(deps.closers, closeQueue)
	return deps, nil
}

// LoadCLI loads env and config for the command line client. Logs go to
// stderr.
func LoadCLI(stderr io.Writer) (config.Config, *slog.Logger, error) {
	if err := loadEnv(); err != nil {
		return config.Config{}, nil, err
	}
	cfg := config.Load()
	return cfg, logger.NewWithWriter(cfg.LogLevel, stderr), nil
}

// BuildAnalyzer wires provider, invoker and analyzer from cfg.
func BuildAnalyzer(ctx context.Context, cfg config.Config, log *slog.Logger) (*analysis.Analyzer, *llm.Invoker, error) {
	variant, err := analysis.ParseVariant(cfg.ResponseVariant)
	if err != nil {
		return nil, nil, err
	}
	provider, err := buildProvider(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	invoker := llm.NewInvoker(provider, invokerConfig(cfg), log)
	return analysis.NewAnalyzer(invoker, variant, log), invoker, nil
}

func loadEnv() error {
	// .env is optional; real environments set variables directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

func invokerConfig(cfg config.Config) llm.InvokerConfig {
	return llm.InvokerConfig{
		Model:   cfg.LLMModel,
		Family:  cfg.Family(),
		Timeout: cfg.LLMTimeout,
		Policy: retry.Policy{
			MaxRetries: cfg.LLMRetries,
			BaseDelay:  cfg.LLMRetryBase,
			Retryable:  llm.RetryOnStatus(http.StatusTooManyRequests, http.StatusServiceUnavailable),
		},
	}
}

func buildProvider(ctx context.Context, cfg config.Config, log *slog.Logger) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
		p, err := llm.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.LLMBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		log.Info("using Gemini provider", "model", cfg.LLMModel, "family", cfg.Family())
		return p, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		p, err := llm.NewOpenAIProvider(cfg.OpenAIKey, cfg.LLMBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI provider", "model", cfg.LLMModel, "family", cfg.Family())
		return p, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: gemini, openai)", cfg.LLMProvider)
	}
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, func() error, error) {
	switch cfg.StoreProvider {
	case "", "none":
		log.Info("inquiry history disabled")
		return nil, nil, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: none, postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, func() error, error) {
	switch cfg.QueueProvider {
	case "", "none":
		return nil, nil, nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("legal-navigator"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nc.Drain, nil
	default:
		return nil, nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: none, nats)", cfg.QueueProvider)
	}
}

// buildRecorder prefers the queue so the request path never waits on the
// database.
func buildRecorder(st store.Store, q queue.Queue, log *slog.Logger) recorder.Recorder {
	switch {
	case q != nil:
		log.Info("recording inquiries through queue")
		return recorder.NewQueueRecorder(q)
	case st != nil:
		log.Info("recording inquiries directly to store")
		return recorder.NewStoreRecorder(st)
	default:
		return recorder.Noop{}
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "", "none":
		return cache.NewNoOpCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache(), nil
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}

func appendCloser(closers []func() error, c func() error) []func() error {
	if c == nil {
		return closers
	}
	return append(closers, c)
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
