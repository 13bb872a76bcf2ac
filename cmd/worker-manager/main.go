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

	"lesson-template-workers/internal/catalog"
	"lesson-template-workers/internal/common/camunda"
	"lesson-template-workers/internal/common/config"
	"lesson-template-workers/internal/common/database"
	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/common/observability"
	"lesson-template-workers/internal/engine/compliance"
	"lesson-template-workers/internal/engine/matching"
	"lesson-template-workers/internal/preferences"
	"lesson-template-workers/internal/tracking"
	"lesson-template-workers/pkg/registry"

	// Compliance Workers (1)
	ec "lesson-template-workers/internal/workers/compliance/evaluate-compliance"

	// Template Workers (5)
	ct "lesson-template-workers/internal/workers/templates/compare-templates"
	fbt "lesson-template-workers/internal/workers/templates/find-best-template"
	fmtpl "lesson-template-workers/internal/workers/templates/find-matching-templates"
	ptr "lesson-template-workers/internal/workers/templates/personalized-template-recommendations"
	rts "lesson-template-workers/internal/workers/templates/record-template-selection"
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

func main() {
	zapLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"env":     cfg.App.Environment,
	})

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFromSettings(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
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
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("postgres schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (only when configured) ---
	var esClient *database.ElasticsearchClient
	if cfg.Catalog.Source == config.CatalogSourceElasticsearch || len(cfg.Database.Elasticsearch.GetAddresses()) > 0 {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if err := esClient.EnsureIndex(ctx, cfg.Catalog.Index, database.TemplateIndexMapping); err != nil {
			zapLog.Fatal("elasticsearch index setup failed", zap.Error(err), zap.String("index", cfg.Catalog.Index))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Collaborators ---
	var source catalog.Provider
	switch cfg.Catalog.Source {
	case config.CatalogSourceElasticsearch:
		source = catalog.NewElasticsearchProvider(esClient.Client, cfg.Catalog.Index)
	default:
		source = catalog.NewPostgresProvider(pg.DB)
	}
	templates := source
	if cfg.Catalog.CacheTTL > 0 {
		templates = catalog.NewCachedProvider(source, rdb.Client, cfg.Catalog.CacheKey, config.GetDuration(cfg.Catalog.CacheTTL), log)
	}

	prefs := preferences.NewService(&preferences.Config{
		Lookback: time.Duration(cfg.Preferences.LookbackDays) * 24 * time.Hour,
		CacheTTL: config.GetDuration(cfg.Preferences.CacheTTL),
	}, pg.DB, rdb.Client, log)
	recorder := tracking.NewRecorder(pg.DB)

	scorer, err := matching.NewScorer(cfg.Engine)
	if err != nil {
		zapLog.Fatal("invalid engine config", zap.Error(err))
	}

	rules, err := compliance.NewRuleStore(cfg.Compliance.RulesPath, log)
	if err != nil {
		zapLog.Fatal("compliance rule book load failed", zap.Error(err), zap.String("path", cfg.Compliance.RulesPath))
	}
	if cfg.Compliance.Watch && cfg.Compliance.RulesPath != "" {
		go func() {
			if err := rules.Watch(ctx); err != nil {
				zapLog.Error("compliance rule watcher stopped", zap.Error(err))
			}
		}()
	}
	complianceEngine := compliance.NewEngine(rules, compliance.Options{
		MaxSuggestions:     cfg.Compliance.MaxSuggestions,
		MaxRecommendations: cfg.Compliance.MaxRecommendations,
	})
	zapLog.Info("Compliance engine ready", zap.Strings("standards", complianceEngine.Standards()))

	// --- Activity registry: optional input schema overrides ---
	var reg *registry.ActivityRegistry
	if cfg.RegistryPath != "" {
		reg, err = registry.LoadRegistry(cfg.RegistryPath)
		if err == nil {
			err = reg.Validate()
		}
		if err != nil {
			zapLog.Warn("activity registry ignored", zap.Error(err), zap.String("path", cfg.RegistryPath))
			reg = nil
		}
	}
	schemaFor := func(taskType string) string {
		if reg == nil {
			return ""
		}
		schema, _ := reg.SchemaFor(taskType)
		return schema
	}
	timeoutFor := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- START: Register ALL 6 Workers ---
	var workers []*camunda.CamundaWorker
	startWorker := func(taskType string, handler camunda.HandlerFunc) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log); w != nil {
			workers = append(workers, w)
		}
	}
	mustHandler := func(taskType string, err error) {
		if err != nil {
			zapLog.Fatal("worker setup failed", zap.String("taskType", taskType), zap.Error(err))
		}
	}

	// --- 1. Template Workers (5) ---
	{
		handler, err := fbt.NewHandler(&fbt.Config{
			Timeout:     timeoutFor(fbt.TaskType),
			InputSchema: schemaFor(fbt.TaskType),
		}, templates, scorer, log, obs)
		mustHandler(fbt.TaskType, err)
		startWorker(fbt.TaskType, handler.Handle)
	}
	{
		wcfg := fmtpl.LoadConfig()
		wcfg.Timeout = timeoutFor(fmtpl.TaskType)
		wcfg.InputSchema = schemaFor(fmtpl.TaskType)
		handler, err := fmtpl.NewHandler(wcfg, templates, scorer, log, obs)
		mustHandler(fmtpl.TaskType, err)
		startWorker(fmtpl.TaskType, handler.Handle)
	}
	{
		handler, err := ct.NewHandler(&ct.Config{
			Timeout:     timeoutFor(ct.TaskType),
			InputSchema: schemaFor(ct.TaskType),
		}, templates, scorer, log, obs)
		mustHandler(ct.TaskType, err)
		startWorker(ct.TaskType, handler.Handle)
	}
	{
		wcfg := ptr.LoadConfig()
		wcfg.Timeout = timeoutFor(ptr.TaskType)
		wcfg.InputSchema = schemaFor(ptr.TaskType)
		handler, err := ptr.NewHandler(wcfg, templates, scorer, prefs, recorder, log, obs)
		mustHandler(ptr.TaskType, err)
		startWorker(ptr.TaskType, handler.Handle)
	}
	{
		handler, err := rts.NewHandler(&rts.Config{
			Timeout:     timeoutFor(rts.TaskType),
			InputSchema: schemaFor(rts.TaskType),
		}, templates, recorder, prefs, log, obs)
		mustHandler(rts.TaskType, err)
		startWorker(rts.TaskType, handler.Handle)
	}

	// --- 2. Compliance Workers (1) ---
	{
		handler, err := ec.NewHandler(&ec.Config{
			Timeout:     timeoutFor(ec.TaskType),
			InputSchema: schemaFor(ec.TaskType),
		}, complianceEngine, log, obs)
		mustHandler(ec.TaskType, err)
		startWorker(ec.TaskType, handler.Handle)
	}

	// --- END: Register ALL 6 Workers ---
	zapLog.Info("Workers registered", zap.Int("started", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := zeebe.HealthCheck(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "component": "zeebe", "error": err.Error()})
			return
		}
		if err := pg.Ping(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "component": "postgres", "error": err.Error()})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
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
	cancel()

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
