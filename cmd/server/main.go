package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emarket/config"
	"emarket/internal/api"
	"emarket/internal/broker"
	"emarket/internal/genai"
	"emarket/internal/identity"
	"emarket/internal/redisclient"
	"emarket/internal/service"
	"emarket/internal/session"
	"emarket/internal/storage"
	"emarket/internal/store"
	"emarket/internal/timer"
	"emarket/internal/util"
	"emarket/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting emarket storefront")

	tp, err := util.InitTracer(cfg.Observ.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	backend, ready, err := openBackend(cfg)
	if err != nil {
		logger.Fatal("Failed to open store backend", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	st := store.New(backend, cfg.Store.Prefix)
	defer st.Close()
	logger.Info("Store opened", zap.String("backend", cfg.Store.Backend))

	objects, err := openObjectStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open object storage", zap.Error(err))
	}

	provider, err := openIdentityProvider(cfg)
	if err != nil {
		logger.Fatal("Failed to set up identity provider", zap.Error(err))
	}

	var gen genai.TextGenerator
	if cfg.GenAI.APIKey != "" {
		client, err := genai.NewGeminiClient(cfg.GenAI.APIKey, cfg.GenAI.Model)
		if err != nil {
			logger.Fatal("Failed to create Gemini client", zap.Error(err))
		}
		gen = client
	} else {
		logger.Warn("GEMINI_API_KEY not set, generated text falls back to fixed copy")
	}
	writer := genai.NewWriter(gen)

	var publisher service.EventPublisher = broker.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	ctx := context.Background()
	storefront := service.NewStorefront(ctx, st, publisher)
	verifier := service.NewProofVerifier(cfg.Business.PurchaseVerification, cfg.Business.VerificationDelay)
	checkouts := service.NewCheckoutService(storefront, verifier, objects, cfg.Business.UploadDelay)
	reading := service.NewReadingService(storefront, st, writer, objects, cfg.Storage.DownloadExpiry)

	watcher := identity.NewWatcher()
	sessions := session.NewRegistry(storefront, checkouts, timer.Real(), cfg.Business.NotificationDismiss)
	sessions.Watch(watcher)
	defer sessions.Close()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var stops []func() error
	if cfg.Kafka.Enabled {
		hookWorker := worker.NewHookWorker(
			broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.HookGroup),
			reading,
		)
		go func() {
			if err := hookWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Hook worker error", zap.Error(err))
			}
		}()

		salesWorker := worker.NewSalesWorker(
			broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.SalesGroup),
		)
		go func() {
			if err := salesWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Sales worker error", zap.Error(err))
			}
		}()
		stops = append(stops, hookWorker.Stop, salesWorker.Stop)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Options{
		Storefront:     storefront,
		Reading:        reading,
		Sessions:       sessions,
		Objects:        objects,
		Provider:       provider,
		Tokens:         identity.NewTokenIssuer(cfg.Identity.TokenSecret, cfg.Identity.TokenTTL),
		Watcher:        watcher,
		AuthRateLimit:  cfg.Identity.AuthRateLimit,
		AuthBurst:      cfg.Identity.AuthBurst,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		Ready:          ready,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	for _, stop := range stops {
		if err := stop(); err != nil {
			logger.Warn("Error stopping worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// openBackend picks the persistence backend and its readiness probe
func openBackend(cfg *config.Config) (store.Backend, func(context.Context) error, error) {
	switch cfg.Store.Backend {
	case "redis":
		client, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return client, func(ctx context.Context) error {
			return client.GetClient().Ping(ctx).Err()
		}, nil
	case "postgres":
		pg, err := store.NewPostgresBackend(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func(ctx context.Context) error {
			return pg.GetDB().PingContext(ctx)
		}, nil
	case "memory", "":
		return store.NewMemoryBackend(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func openObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.Storage.Backend != "minio" {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewMinioStore(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.UseSSL,
	)
}

func openIdentityProvider(cfg *config.Config) (identity.Provider, error) {
	if cfg.Identity.Provider != "firebase" {
		return identity.NewMemoryProvider(), nil
	}
	return identity.NewFirebaseProvider(cfg.Identity.FirebaseAPIKey)
}
