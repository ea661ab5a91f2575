package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/drivefit/riskd/internal/adapters/alert"
	"github.com/drivefit/riskd/internal/adapters/http/api"
	"github.com/drivefit/riskd/internal/adapters/repository"
	"github.com/drivefit/riskd/internal/adapters/textgen"
	app "github.com/drivefit/riskd/internal/app"
	"github.com/drivefit/riskd/internal/config"
	"github.com/drivefit/riskd/internal/domain/risk"
	"github.com/drivefit/riskd/pkg/logger"
	"github.com/drivefit/riskd/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection; the system metrics updater
	// collects its own.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Optional .env for local development; system env wins otherwise.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logging: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, redisClient, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build record store", logger.Error(err))
		return
	}

	classifier, err := buildClassifier(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build classifier", logger.Error(err))
		return
	}

	publisher, err := buildPublisher(ctx, cfg, log, redisClient)
	if err != nil {
		log.Error(ctx, "failed to build alert publisher", logger.Error(err))
		return
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithClassifier(classifier),
		app.WithPublisher(publisher),
		app.WithQueryWindow(cfg.QueryWindow),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreBackend),
			logger.String("alerts", cfg.AlertBackend),
			logger.String("classifier", cfg.Classifier),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore constructs the configured record store. The redis client is
// returned alongside so the alert publisher can share the connection.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, *redis.Client, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return repository.NewMemoryStore(ctx), nil, nil

	case config.StoreRedis:
		store, err := repository.NewRedisStore(ctx, cfg.RedisAddr,
			repository.WithRedisPassword(cfg.RedisPassword),
			repository.WithRedisDB(cfg.RedisDB),
		)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "using redis record store", logger.String("addr", cfg.RedisAddr))
		return store, store.Client(), nil

	case config.StoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		log.Info(ctx, "using dynamodb record store", logger.String("table", cfg.DynamoTable))
		return repository.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), nil, nil

	case config.StorePostgres:
		store, err := repository.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		log.Info(ctx, "using postgres record store")
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// buildClassifier constructs the configured risk classifier.
func buildClassifier(ctx context.Context, cfg *config.Config, log logger.Logger) (risk.Classifier, error) {
	switch cfg.Classifier {
	case config.ClassifierRules:
		return risk.NewRuleClassifier(), nil

	case config.ClassifierBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		gen := textgen.NewBedrockGenerator(
			bedrockruntime.NewFromConfig(awsCfg),
			textgen.WithModelID(cfg.BedrockModelID),
		)
		log.Info(ctx, "using bedrock delegate classifier", logger.String("model", cfg.BedrockModelID))
		return risk.NewDelegateClassifier(gen, risk.WithLogger(log.Named("classifier"))), nil
	}
	return nil, fmt.Errorf("unknown classifier %q", cfg.Classifier)
}

// buildPublisher constructs the configured alert publisher, reusing the
// store's redis connection when one exists.
func buildPublisher(ctx context.Context, cfg *config.Config, log logger.Logger, redisClient *redis.Client) (alert.Publisher, error) {
	switch cfg.AlertBackend {
	case config.AlertLog:
		return alert.NewLogPublisher(log.Named("alerts")), nil

	case config.AlertSNS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		log.Info(ctx, "using sns alert publisher", logger.String("topic", cfg.SNSTopicARN))
		return alert.NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.SNSTopicARN), nil

	case config.AlertRedis:
		if redisClient == nil {
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return nil, fmt.Errorf("failed to connect to redis: %w", err)
			}
		}
		log.Info(ctx, "using redis alert publisher", logger.String("channel", cfg.RedisAlertChannel))
		return alert.NewRedisPublisher(redisClient, cfg.RedisAlertChannel), nil
	}
	return nil, fmt.Errorf("unknown alert backend %q", cfg.AlertBackend)
}

// startSystemMetricsUpdater periodically refreshes system gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
