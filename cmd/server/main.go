package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safevoice-backend/config"
	"safevoice-backend/document"
	"safevoice-backend/handlers"
	"safevoice-backend/llm"
	"safevoice-backend/logger"
	"safevoice-backend/observe"
	"safevoice-backend/render"
	"safevoice-backend/repository"
	"safevoice-backend/rights"
	"safevoice-backend/search"
	"safevoice-backend/service"
	"safevoice-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

func main() {
	dotEnvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.LogJSON)
	if dotEnvErr != nil {
		log.Warn("No .env file found, using environment variables")
	}

	ctx := context.Background()

	// Metrics
	shutdownMetrics, err := observe.InitProvider("safevoice-backend")
	if err != nil {
		log.Fatal("Failed to initialize metrics provider", logrus.Fields{"error": err.Error()})
	}
	defer shutdownMetrics(context.Background())

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		log.Fatal("Failed to create metrics instruments", logrus.Fields{"error": err.Error()})
	}

	// Database
	db, err := initPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres", logrus.Fields{"error": err.Error()})
	}
	defer db.Close()
	log.Info("Postgres connection established")

	// Storage
	fileStorage, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize storage", logrus.Fields{"error": err.Error()})
	}
	log.Info("Storage initialized", logrus.Fields{"type": string(cfg.Storage.Type)})

	// Collaborators
	generator, err := llm.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		log.Fatal("Failed to initialize language model", logrus.Fields{"error": err.Error()})
	}
	if closer, ok := generator.(io.Closer); ok {
		defer closer.Close()
	}
	generator = observe.InstrumentGenerator(generator, metrics, cfg.LLM.Provider)
	log.Info("Language model initialized", logrus.Fields{"provider": cfg.LLM.Provider})

	var searcher search.Searcher = search.Disabled{}
	if cfg.Search.Enabled() {
		cse, err := search.NewCustomSearch(ctx, cfg.Search.APIKey, cfg.Search.EngineID, cfg.Search.MaxResults)
		if err != nil {
			log.Fatal("Failed to initialize web search", logrus.Fields{"error": err.Error()})
		}
		searcher = cse
		log.Info("Web search enabled")
	} else {
		log.Warn("SEARCH_API_KEY or SEARCH_ENGINE_ID not set, web search disabled")
	}
	searcher = observe.InstrumentSearcher(searcher, metrics, "customsearch")

	renderer := render.NewRenderer(cfg.Render)
	if closer, ok := renderer.(io.Closer); ok {
		defer closer.Close()
	}

	guide, err := rights.Load()
	if err != nil {
		log.Fatal("Failed to load legal rights guide", logrus.Fields{"error": err.Error()})
	}

	// Repositories
	conversationRepo := repository.NewConversationRepository(db)
	jobRepo := repository.NewGenerationJobRepository(db)
	documentRepo := repository.NewFIRDocumentRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// Services
	assistantService := service.NewAssistantService(
		service.AssistantWithConversationStore(conversationRepo),
		service.AssistantWithGenerator(generator),
		service.AssistantWithSearcher(searcher),
		service.AssistantWithMetrics(metrics),
		service.AssistantWithLogger(log),
	)

	firService := service.NewFIRService(
		service.FIRWithConversationStore(conversationRepo),
		service.FIRWithJobStore(jobRepo),
		service.FIRWithDocumentStore(documentRepo),
		service.FIRWithFileStore(fileRepo),
		service.FIRWithStorage(fileStorage),
		service.FIRWithGenerator(generator),
		service.FIRWithRenderer(renderer),
		service.FIRWithAssembler(document.NewAssembler(
			document.AssemblerWithDateLayout(cfg.Document.DateLayout),
			document.AssemblerWithLocation(cfg.Document.Location),
		)),
		service.FIRWithMetrics(metrics),
		service.FIRWithLogger(log),
	)

	// Router
	router := gin.New()
	router.Use(gin.Recovery(), log.Middleware(), metrics.Middleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(router, handlers.Handlers{
		Conversations: handlers.NewConversationHandler(assistantService),
		FIR:           handlers.NewFIRHandler(firService, log),
		Rights:        handlers.NewRightsHandler(guide),
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("Server starting", logrus.Fields{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error running HTTP server", logrus.Fields{"error": err.Error()})
		}
	}()

	<-stop
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logrus.Fields{"error": err.Error()})
	} else {
		log.Info("Server stopped gracefully")
	}
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
