package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"placementhelper/ats-agent/internal/config"
	"placementhelper/ats-agent/internal/handlers"
	"placementhelper/ats-agent/internal/metrics"
	"placementhelper/ats-agent/internal/repositories"
	"placementhelper/ats-agent/internal/services"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg)
	slog.Info("✅ Config loaded successfully")

	db, err := config.InitDatabase(cfg)
	if err != nil {
		fatal("❌ Failed to initialize database", err)
	}

	docRepo := repositories.NewDocumentRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	slog.Info("✅ Repositories initialized successfully")

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		fatal("❌ Failed to create upload directory", err)
	}
	extractor := services.NewDocumentExtractor()

	metricsManager := metrics.NewManager()

	// Providers without an API key stay nil; the router reports them as
	// not configured and requests degrade to the offline path.
	var groqService services.GroqService
	if cfg.Groq.APIKey != "" {
		groqService = services.NewGroqService(cfg.Groq.APIKey, cfg.Groq.BaseURL)
		slog.Info("✅ Groq client initialized")
	} else {
		slog.Warn("⚠️  GROQ_API_KEY not set, Groq models will use offline mode")
	}

	var geminiService services.GeminiService
	if cfg.Gemini.APIKey != "" {
		geminiService, err = services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.EmbedModel)
		if err != nil {
			fatal("❌ Failed to initialize Gemini AI", err)
		}
		slog.Info("✅ Gemini AI initialized successfully")
	} else {
		slog.Warn("⚠️  GOOGLE_API_KEY not set, Gemini models will use offline mode")
	}

	router := services.NewModelRouter(groqService, geminiService, cfg.Gemini.Model)
	backoff := services.NewBackoffController(services.RetryPolicy{
		MaxRetries:    cfg.Retry.MaxRetries,
		BaseDelay:     cfg.Retry.BaseDelay,
		RateLimitStep: cfg.Retry.RateLimitStep,
	}).WithObserver(metricsManager)

	prompts := services.NewPromptBuilder(services.PromptLimits{
		AnalysisResume:   cfg.Limits.AnalysisResumeChars,
		AnalysisJob:      cfg.Limits.AnalysisJobChars,
		OptimizeResume:   cfg.Limits.OptimizeResumeChars,
		OptimizeJob:      cfg.Limits.OptimizeJobChars,
		OptimizeAnalysis: cfg.Limits.OptimizeContextChars,
		InterviewResume:  cfg.Limits.InterviewResumeChars,
	})

	var runLog services.RunRecorder
	if cfg.RunLog.Path != "" {
		runLog = services.NewCSVRunLog(cfg.RunLog.Path)
	}

	agentOpts := []services.AgentOption{
		services.WithAgentObserver(metricsManager),
		services.WithRunLog(runLog),
		services.WithOfflineEcho(cfg.Limits.OfflineResumeEchoChars),
	}
	if retriever := initGuidance(cfg, geminiService); retriever != nil {
		agentOpts = append(agentOpts, services.WithGuidance(retriever))
	}

	agent := services.NewResumeAgent(router, backoff, prompts, agentOpts...)
	interviews := services.NewInterviewService(router, backoff, prompts, metricsManager, runLog)
	slog.Info("✅ Services initialized successfully")

	runner := services.NewAnalysisJobRunner(analysisRepo, docRepo, extractor, agent)
	worker := services.NewWorker(analysisRepo, runner, cfg.Worker.Concurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	uploadHandler := handlers.NewUploadHandler(docRepo, storageService, extractor, cfg.Storage.MaxFileSize)
	analysisHandler := handlers.NewAnalysisHandler(agent, docRepo, cfg.Limits.MaxRequestTextChars)
	evaluateHandler := handlers.NewEvaluationHandler(analysisRepo, docRepo, worker, cfg.Limits.MaxRequestTextChars)
	resultHandler := handlers.NewResultHandler(analysisRepo)
	interviewHandler := handlers.NewInterviewHandler(interviews, docRepo, cfg.Limits.MaxRequestTextChars)
	slog.Info("✅ Handlers initialized")

	// Remote calls may sleep through several backoff delays.
	app := fiber.New(fiber.Config{
		AppName:      "ATS Resume Agent API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(handlers.RequestMetrics(metricsManager))

	app.Get("/metrics", adaptor.HTTPHandler(metricsManager.Handler()))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/models", handlers.HandleListModels)
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/analyze", analysisHandler.HandleAnalyze)
	api.Post("/optimize", analysisHandler.HandleOptimize)
	api.Post("/evaluate", evaluateHandler.HandleEvaluate)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Post("/interview/plan", interviewHandler.HandlePlan)
	api.Post("/interview/evaluate", interviewHandler.HandleEvaluateAnswer)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ATS Resume Agent API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/models",
				"POST /api/v1/upload",
				"POST /api/v1/analyze",
				"POST /api/v1/optimize",
				"POST /api/v1/evaluate",
				"GET /api/v1/result/:id",
				"POST /api/v1/interview/plan",
				"POST /api/v1/interview/evaluate",
				"GET /metrics",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("🛑 Shutting down server...")
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			slog.Error("❌ Server forced to shutdown", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("🚀 Server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		fatal("❌ Failed to start server", err)
	}
}

// initGuidance connects the optional guidance store. Any failure disables
// retrieval instead of stopping the server.
func initGuidance(cfg *config.Config, embedder services.Embedder) services.GuidanceRetriever {
	if cfg.Qdrant.URL == "" {
		slog.Info("Guidance retrieval disabled (QDRANT_URL not set)")
		return nil
	}
	if embedder == nil {
		slog.Warn("⚠️  Guidance retrieval needs GOOGLE_API_KEY for embeddings, disabled")
		return nil
	}

	store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, uint64(cfg.Qdrant.VectorSize))
	if err != nil {
		slog.Warn("⚠️  Failed to initialize Qdrant, guidance disabled", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureCollection(ctx); err != nil {
		slog.Warn("⚠️  Failed to initialize Qdrant collection, guidance disabled", "error", err)
		return nil
	}

	slog.Info("✅ Qdrant initialized successfully", "collection", cfg.Qdrant.Collection)
	return services.NewGuidanceRetriever(embedder, store, "")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
