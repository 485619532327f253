package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "mediadownloader/web/internal/api/http"
	"mediadownloader/web/internal/app"
	"mediadownloader/web/internal/cache"
	"mediadownloader/web/internal/download"
	"mediadownloader/web/internal/loader"
	"mediadownloader/web/internal/mediaapi"
	"mediadownloader/web/internal/metrics"
	"mediadownloader/web/internal/notify"
	mongorepo "mediadownloader/web/internal/repository/mongo"
	"mediadownloader/web/internal/selection"
	"mediadownloader/web/internal/telemetry"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "media-downloader-web",
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Warn("tracing disabled", slog.String("endpoint", cfg.OTLPEndpoint), slog.String("error", err.Error()))
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	logger.Info("configuration loaded",
		slog.String("service", "media-downloader-web"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("apiBaseURL", cfg.Runtime.BaseURLFor(app.SideClient)),
		slog.String("apiBaseURLServer", cfg.Runtime.BaseURLFor(app.SideServer)),
		slog.Duration("apiTimeout", cfg.APITimeout),
		slog.Bool("hasRedis", strings.TrimSpace(cfg.RedisURL) != ""),
		slog.Bool("hasMongo", strings.TrimSpace(cfg.MongoURI) != ""),
		slog.Bool("cacheDisabled", cfg.CacheDisabled),
		slog.Duration("cacheTTL", cfg.CacheTTL),
		slog.Bool("strictZeroEndpoint", cfg.StrictZeroEndpoint),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	api := mediaapi.NewClient(mediaapi.Config{
		BaseURL:   cfg.Runtime.BaseURLFor(app.SideServer),
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Timeout: cfg.APITimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Retry:     retryConfig(cfg),
		Logger:    logger,
	})
	reader := cache.WrapReader(api, buildCache(cfg, redisClient, logger))

	loaderOpts := []loader.Option{loader.WithLogger(logger)}
	downloadOpts := []download.Option{download.WithLogger(logger)}
	if cfg.StrictZeroEndpoint {
		loaderOpts = append(loaderOpts, loader.WithRule(selection.RulePresent))
	}

	mongoClient, history := connectHistory(rootCtx, cfg, logger)
	if mongoClient != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(ctx)
		}()
	}
	if history != nil {
		loaderOpts = append(loaderOpts, loader.WithHistory(history))
		downloadOpts = append(downloadOpts, download.WithRecorder(history))
	}

	var flash notify.FlashStore = notify.NewMemoryFlashStore(cfg.FlashTTL)
	if redisClient != nil {
		flash = notify.NewRedisFlashStore(redisClient, cfg.FlashTTL)
	}

	handler := apihttp.NewServer(
		loader.New(reader, loaderOpts...),
		download.NewOrchestrator(api, downloadOpts...),
		apihttp.WithLogger(logger),
		apihttp.WithFlashStore(flash),
		apihttp.WithPublicAPIURL(cfg.Runtime.BaseURLFor(app.SideClient)),
		apihttp.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.APITimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("media downloader web started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("media downloader web stopped")
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func retryConfig(cfg app.Config) mediaapi.RetryConfig {
	retry := mediaapi.DefaultRetryConfig()
	if cfg.APIRetryAttempts > 0 {
		retry.MaxAttempts = cfg.APIRetryAttempts
	}
	return retry
}

// connectRedis returns nil when Redis is not configured or not reachable;
// callers fall back to in-memory stores.
func connectRedis(cfg app.Config, logger *slog.Logger) *redis.Client {
	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL == "" {
		return nil
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid redis url, using in-memory stores", slog.String("error", err.Error()))
		return nil
	}
	client := redis.NewClient(redisOpts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable, using in-memory stores", slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	logger.Info("redis connected", slog.String("addr", redisOpts.Addr))
	return client
}

func buildCache(cfg app.Config, redisClient *redis.Client, logger *slog.Logger) *cache.Cache {
	if cfg.CacheDisabled {
		return cache.New(nil)
	}
	var backend cache.Backend = cache.NewMemoryBackend(0)
	if redisClient != nil {
		backend = cache.NewRedisBackend(redisClient)
	}
	return cache.New(backend, cache.WithTTL(cfg.CacheTTL), cache.WithLogger(logger))
}

func connectHistory(ctx context.Context, cfg app.Config, logger *slog.Logger) (*mongo.Client, *mongorepo.DownloadHistoryRepository) {
	if strings.TrimSpace(cfg.MongoURI) == "" {
		logger.Info("mongo not configured, download history disabled")
		return nil, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongorepo.Connect(connectCtx, cfg.MongoURI, options.Client().SetMonitor(otelmongo.NewMonitor()))
	if err != nil {
		logger.Warn("mongo connect failed, download history disabled", slog.String("error", err.Error()))
		return nil, nil
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Warn("mongo ping failed, download history disabled", slog.String("error", err.Error()))
		_ = client.Disconnect(context.Background())
		return nil, nil
	}

	repo := mongorepo.NewDownloadHistoryRepository(client, cfg.MongoDatabase)
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}
	return client, repo
}
