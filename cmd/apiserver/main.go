// API server entry point for fairwheel.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairwheel/fairwheel/internal/application/analysis"
	"github.com/fairwheel/fairwheel/internal/config"
	"github.com/fairwheel/fairwheel/internal/infrastructure/database/postgres"
	"github.com/fairwheel/fairwheel/internal/infrastructure/database/redis"
	"github.com/fairwheel/fairwheel/internal/infrastructure/market/corpus"
	"github.com/fairwheel/fairwheel/internal/infrastructure/market/external"
	"github.com/fairwheel/fairwheel/internal/infrastructure/market/synthetic"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/prometheus"
	apihttp "github.com/fairwheel/fairwheel/internal/interfaces/http"
	"github.com/fairwheel/fairwheel/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

// version is injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: logger init: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("apiserver exited with error", logging.Err(err))
	}
}

// loadConfig loads from file when present, otherwise from the environment.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	referenceYear := cfg.Market.ReferenceYear
	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}

	logger.Info("starting fairwheel apiserver",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
		logging.Int("reference_year", referenceYear),
		logging.Duration("corpus_ttl", cfg.Market.CorpusTTL),
	)

	// ── Metrics ───────────────────────────────────────────────────────────────
	var (
		appMetrics    *prometheus.AppMetrics
		metricsServer http.Handler
	)
	if cfg.Metrics.Enabled {
		mc, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
		}, logger)
		if err != nil {
			return fmt.Errorf("metrics init: %w", err)
		}
		appMetrics = prometheus.NewAppMetrics(mc)
		metricsServer = mc.Handler()
	}

	// ── Corpus infrastructure ─────────────────────────────────────────────────
	var (
		cacheOpts []corpus.Option
		checkers  []handlers.HealthChecker
	)

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("redis init: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		cacheOpts = append(cacheOpts,
			corpus.WithSnapshotStore(redis.NewSnapshotStore(redisClient, logger)))
		checkers = append(checkers, handlers.NamedChecker("redis", redisClient.Ping))
	}

	if cfg.Postgres.Enabled {
		listings, err := postgres.NewListingStore(ctx, cfg.Postgres, referenceYear, logger)
		if err != nil {
			return fmt.Errorf("postgres init: %w", err)
		}
		defer listings.Close()

		cacheOpts = append(cacheOpts, corpus.WithProviders(listings))
		checkers = append(checkers, handlers.NamedChecker("postgres", listings.Ping))
	}

	if cfg.External.Enabled {
		src, err := external.NewClient(cfg.External.BaseURL, cfg.External.Timeout, referenceYear, logger)
		if err != nil {
			return fmt.Errorf("external source init: %w", err)
		}
		cacheOpts = append(cacheOpts, corpus.WithProviders(src))
	}

	if appMetrics != nil {
		cacheOpts = append(cacheOpts, corpus.WithRefreshObserver(appMetrics.IncCorpusRefresh))
	}

	gen := synthetic.NewGenerator(
		rand.New(rand.NewSource(time.Now().UnixNano())), referenceYear, logger)
	cache := corpus.NewCache(gen, cfg.Market.CorpusTTL, logger, cacheOpts...)

	// ── Application service ───────────────────────────────────────────────────
	var analysisMetrics analysis.Metrics = analysis.NopMetrics()
	if appMetrics != nil {
		analysisMetrics = appMetrics
	}
	svc := analysis.NewService(cache, referenceYear, analysisMetrics, logger)

	// ── HTTP server ───────────────────────────────────────────────────────────
	router := apihttp.NewRouter(apihttp.RouterConfig{
		AnalyzeHandler: handlers.NewAnalyzeHandler(svc, logger),
		HealthHandler:  handlers.NewHealthHandler(version, svc, checkers...),
		Logger:         logger,
		Metrics:        appMetrics,
		MetricsServer:  metricsServer,
		Mode:           cfg.Server.Mode,
	})

	srv := apihttp.NewServer(router, apihttp.ServerOptions{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Keep the corpus gauges fresh while serving.
	if appMetrics != nil {
		go reportCorpusState(ctx, cache, appMetrics)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// reportCorpusState periodically exports corpus size and age gauges.
func reportCorpusState(ctx context.Context, cache *corpus.Cache, m *prometheus.AppMetrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info := cache.Info()
			m.SetCorpusState(info.Size, info.RefreshedAt, time.Now())
		}
	}
}
