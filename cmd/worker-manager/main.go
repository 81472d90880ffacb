// cmd/worker-manager/main.go
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

	"loan-workers/internal/common/camunda"
	"loan-workers/internal/common/config"
	"loan-workers/internal/common/database"
	"loan-workers/internal/common/idempotency"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/observability"
	"loan-workers/internal/common/recommend"
	"loan-workers/internal/common/scoring"

	// Applicant Profile Workers (2)
	bap "loan-workers/internal/workers/applicant/build-applicant-profile"
	ppb "loan-workers/internal/workers/applicant/persist-profile-bundle"

	// Model Collaborator Workers (2)
	rlo "loan-workers/internal/workers/scoring/recommend-loan-offers"
	sfv "loan-workers/internal/workers/scoring/score-feature-vector"

	// Loan Lifecycle Workers (4)
	clr "loan-workers/internal/workers/loan/create-loan-record"
	ele "loan-workers/internal/workers/loan/evaluate-loan-eligibility"
	ie "loan-workers/internal/workers/loan/index-evaluation"
	nd "loan-workers/internal/workers/loan/notify-decision"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.Timeout),
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	idemStore := idempotency.NewRedisStore(redis.GetClient(), cfg.Idempotency.KeyPrefix)

	scorer := scoring.NewClient(
		cfg.APIs.Scoring.BaseURL,
		time.Duration(cfg.APIs.Scoring.Timeout)*time.Millisecond,
		log,
	)

	recommender := recommend.NewClient(
		cfg.APIs.Recommender.BaseURL,
		time.Duration(cfg.APIs.Recommender.Timeout)*time.Millisecond,
		log,
	)

	zapLog.Info("All external service clients initialized")

	// --- START: Register ALL 8 Workers ---

	// --- 1. Applicant Profile Workers (2) ---
	if cfg.Workers[bap.TaskType].Enabled {
		handler := bap.NewHandler(
			&bap.Config{
				Timeout: time.Duration(cfg.Workers[bap.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, bap.TaskType, cfg.Workers[bap.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ppb.TaskType].Enabled {
		handler := ppb.NewHandler(
			&ppb.Config{
				Timeout: time.Duration(cfg.Workers[ppb.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, ppb.TaskType, cfg.Workers[ppb.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Model Collaborator Workers (2) ---
	if cfg.Workers[sfv.TaskType].Enabled {
		handler := sfv.NewHandler(
			&sfv.Config{
				Timeout: time.Duration(cfg.Workers[sfv.TaskType].Timeout) * time.Millisecond,
			},
			scorer, log,
		)
		startWorker(zeebeClient, sfv.TaskType, cfg.Workers[sfv.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[rlo.TaskType].Enabled {
		handler := rlo.NewHandler(
			&rlo.Config{
				Timeout: time.Duration(cfg.Workers[rlo.TaskType].Timeout) * time.Millisecond,
			},
			recommender, log,
		)
		startWorker(zeebeClient, rlo.TaskType, cfg.Workers[rlo.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Loan Lifecycle Workers (4) ---
	if cfg.Workers[clr.TaskType].Enabled {
		handler := clr.NewHandler(
			&clr.Config{
				Timeout:        time.Duration(cfg.Workers[clr.TaskType].Timeout) * time.Millisecond,
				IdempotencyTTL: time.Duration(cfg.Idempotency.TTL) * time.Second,
			},
			pg.DB, idemStore, log,
		)
		startWorker(zeebeClient, clr.TaskType, cfg.Workers[clr.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ele.TaskType].Enabled {
		handler := ele.NewHandler(
			&ele.Config{
				Timeout:                  time.Duration(cfg.Workers[ele.TaskType].Timeout) * time.Millisecond,
				AnnualInterestRate:       cfg.Eligibility.AnnualInterestRate,
				MinIncome:                cfg.Eligibility.MinIncome,
				UnemployedMinOtherIncome: cfg.Eligibility.UnemployedMinOtherIncome,
				MaxDebtRatio:             cfg.Eligibility.MaxDebtRatio,
				CacheKey:                 "rule-config",
				CacheTTL:                 time.Duration(cfg.Eligibility.CacheTTL) * time.Second,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, ele.TaskType, cfg.Workers[ele.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[nd.TaskType].Enabled {
		handler, err := nd.NewHandler(
			&nd.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[nd.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create notify-decision handler", zap.Error(err))
		}
		startWorker(zeebeClient, nd.TaskType, cfg.Workers[nd.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ie.TaskType].Enabled {
		handler := ie.NewHandler(
			&ie.Config{
				Index:   cfg.Indexing.EvaluationsIndex,
				Timeout: time.Duration(cfg.Workers[ie.TaskType].Timeout) * time.Millisecond,
			},
			esClient, log,
		)
		startWorker(zeebeClient, ie.TaskType, cfg.Workers[ie.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 8 workers registered successfully")

	// --- Health & Metrics Server ---
	healthSrv := &http.Server{Addr: ":8080"}
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
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
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
