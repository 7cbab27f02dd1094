package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"RiskRegime/internal/domain/models"
	"RiskRegime/internal/domain/repository"
	handler "RiskRegime/internal/handler/api"
	internalrepo "RiskRegime/internal/repository"
	"RiskRegime/internal/usecase"
	"RiskRegime/pkg/cache"
	pkgch "RiskRegime/pkg/clickhouse"
	"RiskRegime/pkg/config"
	xhttp "RiskRegime/pkg/http"
	pkgkafka "RiskRegime/pkg/kafka"
	"RiskRegime/pkg/logger"
	"RiskRegime/pkg/metrics"
	"RiskRegime/pkg/server"
)

// ProvideLogger creates the root logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry shared by all collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

func newRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.PoolSize/2, 5*time.Second),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

// ProvideClickHouseClient connects to ClickHouse and ensures the bars table exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		internalrepo.DailyBarsDDL(cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideTimeSeriesSource builds the configured market-data source, optionally
// behind a bar cache.
func ProvideTimeSeriesSource(cfg *config.Config, l *logger.Logger) (repository.TimeSeriesSource, func(), error) {
	var (
		src     repository.TimeSeriesSource
		closers []func() error
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	switch cfg.Source.Type {
	case "clickhouse":
		client, err := ProvideClickHouseClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		chs, err := internalrepo.NewClickHouseSource(client, cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table, l)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		src = chs
	case "mock":
		src = &internalrepo.MockSource{}
	default:
		hc := xhttp.NewClient(xhttp.WithTimeout(cfg.Source.Timeout))
		src = internalrepo.NewYahooSource(hc, cfg.Source.BaseURL, l)
	}

	if cfg.Source.Cache.Enabled {
		var c cache.Service
		switch cfg.Source.Cache.Backend {
		case "redis", "layered":
			rc, err := newRedisCache(cfg)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			c = rc
			if cfg.Source.Cache.Backend == "layered" {
				c = cache.NewLayeredCache(rc,
					cache.WithLayeredMemorySize(cfg.Source.Cache.MaxSize),
					cache.WithLayeredMemoryTTL(cfg.Source.Cache.TTL),
				)
			}
		default:
			c = cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Source.Cache.MaxSize))
		}
		closers = append(closers, c.Close)
		src = internalrepo.NewCachedSource(src, c, cfg.Source.Cache.TTL, l)
	}

	l.Info("market data source ready", logger.String("source", src.Name()))
	return src, cleanup, nil
}

// ProvideModelStore builds the configured model store.
func ProvideModelStore(cfg *config.Config, l *logger.Logger) (repository.ModelStore, func(), error) {
	var (
		store repository.ModelStore
		err   error
	)
	switch cfg.ModelStore.Type {
	case "sqlite":
		store, err = internalrepo.NewSQLiteModelStore(cfg.ModelStore.SQLitePath, l)
	case "redis":
		var rc *cache.RedisCache
		rc, err = newRedisCache(cfg)
		if err == nil {
			store = internalrepo.NewRedisModelStore(rc, l)
		}
	default:
		store, err = internalrepo.NewFileModelStore(cfg.ModelStore.Dir, l)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("model store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvideEventPublisher returns a Kafka publisher when Kafka is enabled and a
// no-op publisher otherwise.
func ProvideEventPublisher(cfg *config.Config, reg *prometheus.Registry) (repository.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithMetrics(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideTrainingOrchestrator creates the training use case.
func ProvideTrainingOrchestrator(
	cfg *config.Config,
	src repository.TimeSeriesSource,
	store repository.ModelStore,
	pub repository.EventPublisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.TrainingOrchestrator {
	return usecase.NewTrainingOrchestrator(src, store, pub, m, usecase.TrainingConfig{
		Seed:            cfg.Training.Seed,
		Trees:           cfg.Training.Trees,
		MaxDepth:        cfg.Training.MaxDepth,
		MinSamplesSplit: cfg.Training.MinSamplesSplit,
		MinSamplesLeaf:  cfg.Training.MinSamplesLeaf,
		TestFraction:    cfg.Training.TestFraction,
		StrictSymbols:   cfg.Training.StrictSymbols,
		Concurrency:     cfg.Training.Concurrency,
	}, l)
}

// ProvideTrainedModel loads the serving model once. A missing model is not fatal:
// the service starts and reports model_unavailable until one is trained.
func ProvideTrainedModel(cfg *config.Config, store repository.ModelStore, l *logger.Logger) (*models.TrainedModel, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m, err := store.Load(ctx, cfg.ModelStore.Key)
	if errors.Is(err, models.ErrModelNotFound) {
		l.Warn("no trained model found; run the train command first", logger.String("key", cfg.ModelStore.Key))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.Info("model loaded",
		logger.String("key", cfg.ModelStore.Key),
		logger.String("model_id", m.ID),
		logger.Time("trained_at", m.TrainedAt),
		logger.Strings("symbols", m.Symbols),
	)
	return m, nil
}

// ProvideInferenceService creates the inference use case.
func ProvideInferenceService(
	cfg *config.Config,
	src repository.TimeSeriesSource,
	m *models.TrainedModel,
	pub repository.EventPublisher,
	rec repository.Metrics,
	l *logger.Logger,
) (*usecase.InferenceService, error) {
	return usecase.NewInferenceService(src, m, pub, rec, l, usecase.WithAnalysisPeriod(cfg.Source.Period))
}

// ProvideHandlers lists the HTTP route groups.
func ProvideHandlers(l *logger.Logger, svc *usecase.InferenceService) []xhttp.Handler {
	return []xhttp.Handler{handler.NewRiskEchoHandler(l, svc)}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, handlers []xhttp.Handler, reg *prometheus.Registry) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer(l.Component("http"), handlers, opts...)
}

// ProvideScheduler creates the retraining scheduler, or nil when no schedule is set.
func ProvideScheduler(cfg *config.Config, o *usecase.TrainingOrchestrator, l *logger.Logger) (*usecase.Scheduler, error) {
	if cfg.Training.Schedule == "" {
		return nil, nil
	}
	return usecase.NewScheduler(cfg.Training.Schedule, o, models.TrainRequest{
		Symbols:  cfg.Training.Symbols,
		Period:   cfg.Training.Period,
		ModelKey: cfg.ModelStore.Key,
	}, cfg.Training.Timeout, l)
}

// ProvideApp assembles the serving process.
func ProvideApp(l *logger.Logger, srv *xhttp.Server, sched *usecase.Scheduler) *server.App {
	app := server.New(l.Component("app")).Add("http", srv)
	if sched != nil {
		app.Add("scheduler", sched)
	}
	return app
}
