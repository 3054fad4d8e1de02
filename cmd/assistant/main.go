// cmd/assistant/main.go
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

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/database"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/observability"
	"github.com/SaiffMoh/FastTravelGraph/internal/engine"
	"github.com/SaiffMoh/FastTravelGraph/internal/llm"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/providers/amadeus"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/buildrequest"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/extract"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/format"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/hotels"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/search"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/selection"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/summarize"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/validate"
	"github.com/SaiffMoh/FastTravelGraph/internal/store"
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

	zapLog.Info("Starting travel assistant...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild once the configured level and format are known.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Conversation store ---
	var conversations store.ConversationStore
	var offers store.OfferCache

	switch cfg.Database.ConversationBackend {
	case "redis":
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

		conversations = store.NewRedisConversationStore(redisClient.Client)
		offers = store.NewRedisOfferCache(redisClient.Client, time.Duration(cfg.Search.OfferCacheTTL)*time.Second)
		zapLog.Info("Redis conversation store connected")

	case "postgres":
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

		conversations = store.NewPostgresConversationStore(pg.DB)
		offers = store.NewMemoryOfferCache()
		zapLog.Info("PostgreSQL conversation store connected")

	default:
		conversations = store.NewMemoryConversationStore()
		offers = store.NewMemoryOfferCache()
		zapLog.Info("In-memory conversation store selected")
	}

	// --- Search archive (best-effort, optional) ---
	var archive engine.Archiver
	if cfg.Database.Elasticsearch.ArchiveEnabled {
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
		archive = store.NewSearchArchive(esClient.Client, cfg.Database.Elasticsearch.ArchiveIndex, log)
		zapLog.Info("Elasticsearch search archive connected")
	}

	// --- External service clients ---
	amadeusClient := amadeus.NewClient(cfg.Amadeus)
	llmClient := llm.NewHTTPClient(cfg.LLM)
	zapLog.Info("All external service clients initialized")

	// --- Workflow engine ---
	builder := buildrequest.NewBuilder(cfg.Search)
	eng := engine.New(cfg.Engine, cfg.Search, engine.Deps{
		Extract:   extract.NewHandler(llmClient, log),
		Validate:  validate.NewHandler(llmClient, log),
		Builder:   builder,
		Search:    search.NewHandler(cfg.Search, config.GetDuration(cfg.Amadeus.SearchTimeout), amadeusClient, builder, log),
		Format:    format.NewHandler(offers, log),
		Summarize: summarize.NewHandler(llmClient, log),
		Selection: selection.NewHandler(cfg.Hotels, offers, log),
		Hotels:    hotels.NewHandler(cfg.Hotels, config.GetDuration(cfg.Amadeus.HotelTimeout), amadeusClient, log),

		Tokens:        amadeusClient,
		Conversations: conversations,
		Offers:        offers,
		Archive:       archive,

		Logger:   log,
		Recorder: obs,
	})

	// --- HTTP API ---
	mux := http.NewServeMux()

	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req models.TurnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.UserMsg == "" {
			http.Error(w, `{"error":"userMsg is required"}`, http.StatusBadRequest)
			return
		}
		if req.ThreadID == "" {
			req.ThreadID = uuid.New().String()
		}

		resp := eng.RunTurn(r.Context(), req.ThreadID, req.UserMsg)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			ThreadID string `json:"threadId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ThreadID == "" {
			http.Error(w, `{"error":"threadId is required"}`, http.StatusBadRequest)
			return
		}

		if err := conversations.Clear(r.Context(), req.ThreadID); err != nil {
			log.Warn("conversation clear failed", map[string]interface{}{
				"threadId": req.ThreadID,
				"error":    err.Error(),
			})
		}
		if err := offers.Clear(r.Context(), req.ThreadID); err != nil {
			log.Warn("offer cache clear failed", map[string]interface{}{
				"threadId": req.ThreadID,
				"error":    err.Error(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "reset", "threadId": req.ThreadID})
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		missing := []string{}
		if cfg.Amadeus.ClientID == "" || cfg.Amadeus.ClientSecret == "" {
			missing = append(missing, "amadeus credentials")
		}
		if cfg.LLM.APIKey == "" {
			missing = append(missing, "llm api key")
		}

		status := "healthy"
		if len(missing) > 0 {
			status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"missing": missing,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Travel assistant stopped gracefully")
}
