// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"homelead-workers/internal/audit"
	"homelead-workers/internal/common/camunda"
	"homelead-workers/internal/common/config"
	"homelead-workers/internal/common/database"
	apperrors "homelead-workers/internal/common/errors"
	commonhttp "homelead-workers/internal/common/http"
	"homelead-workers/internal/common/logger"
	"homelead-workers/internal/common/observability"
	"homelead-workers/internal/llm"
	"homelead-workers/internal/query/executor"
	"homelead-workers/internal/query/pipeline"
	"homelead-workers/internal/store/elastic"
	"homelead-workers/internal/store/memory"
	mongostore "homelead-workers/internal/store/mongo"
	"homelead-workers/pkg/registry"

	pui "homelead-workers/internal/workers/ai-conversation/parse-user-intent"
	rdq "homelead-workers/internal/workers/ai-conversation/resolve-data-query"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// closer runs on shutdown in reverse registration order.
type closer func(ctx context.Context) error

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("storeDriver", cfg.Store.Driver),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	var closers []closer

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Collection profiles ---
	reg, err := registry.LoadOrDefault(cfg.Query.RegistryPath)
	if err != nil {
		zapLog.Fatal("registry load failed", zap.Error(err), zap.String("path", cfg.Query.RegistryPath))
	}
	zapLog.Info("Collection registry loaded", zap.String("version", reg.Version))

	// --- Document store ---
	store, closeStore, err := openStore(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("store initialization failed", zap.Error(err))
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	// --- Redis (completion cache) ---
	var redis *database.RedisClient
	if cfg.APIs.LLM.CacheTTL > 0 {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		closers = append(closers, func(context.Context) error { return redis.Close() })
		zapLog.Info("Redis connected successfully")
	}

	// --- PostgreSQL (query audit log) ---
	var auditor pipeline.Auditor
	if cfg.Query.AuditEnabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		closers = append(closers, func(context.Context) error { return pg.Close() })

		recorder := audit.NewRecorder(pg.GetDB())
		if err := recorder.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("audit schema setup failed", zap.Error(err))
		}
		auditor = recorder
		zapLog.Info("PostgreSQL connected successfully, query audit enabled")
	}

	// --- Language model ---
	var completer llm.Completer
	openAI, err := llm.NewOpenAICompleter(
		llm.ConfigFrom(cfg.APIs.LLM),
		commonhttp.NewClient(config.GetDuration(cfg.APIs.LLM.Timeout)),
		log,
	)
	switch {
	case err != nil:
		zapLog.Warn("every utterance uses fallback extraction",
			zap.Error(apperrors.NewLLMNotConfiguredError()),
			zap.NamedError("cause", err))
	case redis != nil:
		completer = llm.NewCachedCompleter(openAI, redis.GetClient(), config.GetDuration(cfg.APIs.LLM.CacheTTL), cfg.APIs.LLM.Model, log)
	default:
		completer = openAI
	}

	// --- Pipeline ---
	opts := pipeline.Options{
		Registry:      reg,
		Store:         store,
		Auditor:       auditor,
		Observability: obs,
		DefaultLimit:  cfg.Query.DefaultLimit,
		DisplayLimit:  cfg.Query.DisplayLimit,
		Logger:        log,
	}
	if completer != nil {
		opts.Completer = completer
	}
	resolver := pipeline.New(opts)

	// --- Workers ---
	zbClient := zeebe.GetClient()
	var workers []*camunda.CamundaWorker

	if taskType := rdq.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := rdq.NewHandler(rdq.ConfigFrom(wcfg), resolver, obs, &resolveDataQueryLoggerAdapter{log})
		workers = append(workers, camunda.StartWorker(zbClient, taskType, wcfg, handler.Handle, zapLog))
	}

	if taskType := pui.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		var intentCompleter pui.Completer
		if completer != nil {
			intentCompleter = completer
		}
		handler := pui.NewHandler(pui.ConfigFrom(wcfg), intentCompleter, &parseUserIntentLoggerAdapter{log})
		workers = append(workers, camunda.StartWorker(zbClient, taskType, wcfg, handler.Handle, zapLog))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](shutdownCtx); err != nil {
			zapLog.Error("Error closing connection", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// openStore connects the backend named by store.driver.
func openStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (executor.Store, closer, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		if cfg.Store.SeedPath == "" {
			zapLog.Info("Using in-memory store with demo records")
			return memory.NewSeeded(), nil, nil
		}
		s, err := memory.LoadFile(cfg.Store.SeedPath)
		if err != nil {
			return nil, nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		zapLog.Info("Using in-memory store", zap.String("seedPath", cfg.Store.SeedPath))
		return s, nil, nil

	case config.StoreDriverElasticsearch:
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return nil, nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		zapLog.Info("Elasticsearch connected successfully", zap.String("indexPrefix", cfg.Store.IndexPrefix))
		return elastic.New(es.Client, cfg.Store.IndexPrefix), nil, nil

	default:
		var mc *database.MongoClient
		err := retryWithBackoff(func() error {
			var err error
			mc, err = database.DialMongo(ctx, cfg.Database.Mongo)
			return err
		}, 15, 2*time.Second, zapLog, "MongoDB connection")
		if err != nil {
			return nil, nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		zapLog.Info("MongoDB connected successfully", zap.String("database", cfg.Database.Mongo.Database))
		return mongostore.New(mc.Database), mc.Close, nil
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Logger adapters for workers that have their own Logger interfaces
type resolveDataQueryLoggerAdapter struct {
	logger.Logger
}

func (a *resolveDataQueryLoggerAdapter) With(fields map[string]interface{}) rdq.Logger {
	return &resolveDataQueryLoggerAdapter{a.Logger.With(fields)}
}

type parseUserIntentLoggerAdapter struct {
	logger.Logger
}

func (a *parseUserIntentLoggerAdapter) With(fields map[string]interface{}) pui.Logger {
	return &parseUserIntentLoggerAdapter{a.Logger.With(fields)}
}
