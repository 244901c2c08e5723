// cmd/intake-service/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"guild-intake/internal/archive"
	"guild-intake/internal/audit"
	"guild-intake/internal/common/auth"
	"guild-intake/internal/common/aws"
	"guild-intake/internal/common/camunda"
	"guild-intake/internal/common/config"
	"guild-intake/internal/common/database"
	"guild-intake/internal/common/logger"
	"guild-intake/internal/common/observability"
	"guild-intake/internal/intake"
	"guild-intake/internal/notify"
	"guild-intake/internal/review"
	"guild-intake/internal/store"

	// Intake workers (3)
	bi "guild-intake/internal/workers/intake/begin-intake"
	cp1 "guild-intake/internal/workers/intake/collect-phase-one"
	cp2 "guild-intake/internal/workers/intake/collect-phase-two"

	// Review workers (5)
	aa "guild-intake/internal/workers/review/accept-application"
	na "guild-intake/internal/workers/review/next-application"
	ra "guild-intake/internal/workers/review/reject-application"
	rs "guild-intake/internal/workers/review/request-screenshot"
	vq "guild-intake/internal/workers/review/view-queue"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intake service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Durable application store ---
	appStore := store.NewFileStore(cfg.Store.Path)

	// --- Notification dispatcher ---
	dispatcher := buildDispatcher(ctx, cfg, log, zapLog)

	// --- Post-commit hooks: audit log and archive index ---
	var hooks []review.TransitionHook

	var pg *database.PostgresClient
	if cfg.Audit.Enabled {
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
		zapLog.Info("PostgreSQL connected successfully")
		hooks = append(hooks, audit.NewRecorder(pg.DB, log))
	}

	if cfg.Archive.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		hooks = append(hooks, archive.NewIndexer(esClient.Client, cfg.Archive.Index, log))
	}

	// --- Review machine (single mutator of the application document) ---
	machine := review.New(ctx, appStore, dispatcher, log, review.WithHooks(hooks...))

	// --- Intake draft cache ---
	var draftCache intake.Cache
	if cfg.Intake.Backend == "redis" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
		draftCache = intake.NewRedisCache(redisClient.Client, cfg.Intake.DraftTTL())
	} else {
		draftCache = intake.NewMemoryCache(cfg.Intake.DraftTTL(), cfg.Intake.MaxDrafts)
	}

	collector := intake.NewCollector(draftCache, machine, log)

	// --- Reviewer gate ---
	gate := auth.NewStaticGate(cfg.Review.Reviewers)

	// --- Register workers ---
	if config.IsWorkerEnabled(cfg, bi.TaskType) {
		handler := bi.NewHandler(bi.LoadConfig(), collector, log)
		startWorker(zeebeClient, bi.TaskType, config.GetWorkerConfig(cfg, bi.TaskType), handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, cp1.TaskType) {
		handler := cp1.NewHandler(cp1.LoadConfig(), collector, log)
		startWorker(zeebeClient, cp1.TaskType, config.GetWorkerConfig(cfg, cp1.TaskType), handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, cp2.TaskType) {
		handler := cp2.NewHandler(cp2.LoadConfig(), collector, log)
		startWorker(zeebeClient, cp2.TaskType, config.GetWorkerConfig(cfg, cp2.TaskType), handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, aa.TaskType) {
		handler := aa.NewHandler(aa.LoadConfig(), machine, gate, log)
		startWorker(zeebeClient, aa.TaskType, config.GetWorkerConfig(cfg, aa.TaskType), handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, ra.TaskType) {
		handler := ra.NewHandler(ra.LoadConfig(), machine, gate, log)
		startWorker(zeebeClient, ra.TaskType, config.GetWorkerConfig(cfg, ra.TaskType), handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, rs.TaskType) {
		handler := rs.NewHandler(rs.LoadConfig(), machine, gate, log)
		startWorker(zeebeClient, rs.TaskType, config.GetWorkerConfig(cfg, rs.TaskType), handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, vq.TaskType) {
		handler := vq.NewHandler(vq.LoadConfig(), machine, gate, log)
		startWorker(zeebeClient, vq.TaskType, config.GetWorkerConfig(cfg, vq.TaskType), handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, na.TaskType) {
		handler := na.NewHandler(na.LoadConfig(), machine, gate, log)
		startWorker(zeebeClient, na.TaskType, config.GetWorkerConfig(cfg, na.TaskType), handler.Handle, obs, zapLog)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & metrics server ---
	if cfg.Metrics.Enabled {
		go func() {
			http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				status := "healthy"
				code := http.StatusOK
				if err := camundaClient.HealthCheck(r.Context()); err != nil {
					status = "degraded"
					code = http.StatusServiceUnavailable
				}
				w.WriteHeader(code)
				json.NewEncoder(w).Encode(map[string]string{
					"status": status,
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "ready",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Intake service stopped gracefully")
}

// buildDispatcher wires SES/SNS delivery when any channel is enabled and
// falls back to the log dispatcher otherwise.
func buildDispatcher(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) notify.Dispatcher {
	if !cfg.Notifications.Email.Enabled && !cfg.Notifications.Reviewers.Enabled {
		zapLog.Info("Notification channels disabled, using log dispatcher")
		return notify.NewLogDispatcher(log)
	}

	var sesClient notify.SESService
	if cfg.Notifications.Email.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SES client", zap.Error(err))
		}
		sesClient = client
	}

	var snsClient notify.SNSService
	if cfg.Notifications.Reviewers.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		snsClient = client
	}

	return notify.NewAWSDispatcher(notify.AWSConfig{
		EmailEnabled:     cfg.Notifications.Email.Enabled,
		FromEmail:        cfg.Notifications.Email.FromEmail,
		ReviewersEnabled: cfg.Notifications.Reviewers.Enabled,
		ReviewerTopicARN: cfg.Notifications.Reviewers.TopicARN,
	}, sesClient, snsClient, notify.NewStaticContacts(cfg.Notifications.Contacts), log)
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), obs *observability.Observability, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordJobProcessed(context.Background(), taskType)
		obs.RecordJobDuration(context.Background(), time.Since(start), taskType)
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
