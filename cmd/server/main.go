package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sahayak-backend/internal/agent"
	"sahayak-backend/internal/config"
	"sahayak-backend/internal/database"
	"sahayak-backend/internal/handlers"
	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/metrics"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/proactive"
	"sahayak-backend/internal/prompts"
	"sahayak-backend/internal/repository"
	"sahayak-backend/internal/router"
	"sahayak-backend/internal/services"
	"sahayak-backend/internal/storage"
	"sahayak-backend/internal/websocket"
	"sahayak-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting Sahayak backend", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("PostgreSQL connection failed", zap.Error(err))
	}
	defer pool.Close()
	log.Info("PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClients.Close()
	log.Info("Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(ctx, pool, cfg.MigrationsPath, log.Named("migrations")); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	// ──── Step 5: Initialize Gemini Client ────
	gemini, err := llm.NewGeminiClient(ctx, llm.GeminiOptions{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		ConcurrentReqs: cfg.GeminiConcurrentReqs,
		Timeout:        cfg.GeminiTimeout,
		Metrics:        m,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Gemini client initialization failed", zap.Error(err))
	}
	defer gemini.Close()
	catalog := prompts.Default()
	log.Info("Gemini client initialized", zap.String("model", cfg.GeminiModel))

	// ──── Initialize Repositories ────
	activityRepo := repository.NewActivityRepo(pool)
	artifactRepo := repository.NewArtifactRepo(pool)
	worksheetRepo := repository.NewWorksheetRepo(pool)
	attendanceRepo := repository.NewAttendanceRepo(pool)
	suggestionRepo := repository.NewSuggestionRepo(pool)
	briefingRepo := repository.NewBriefingRepo(pool)
	syllabusRepo := repository.NewSyllabusRepo(pool)

	store, err := storage.NewLocal(cfg.StoragePath)
	if err != nil {
		log.Fatal("object storage initialization failed", zap.Error(err))
	}
	publisher := websocket.NewPublisher(redisClients.PubSub, log)

	// ──── Step 6: Build the Orchestrator ────
	toolbox := agent.NewToolbox(agent.ToolboxDeps{
		LLM:        gemini,
		Catalog:    catalog,
		Artifacts:  artifactRepo,
		Activity:   activityRepo,
		Attendance: attendanceRepo,
		WindowDays: cfg.AttendanceWindowDays,
		Logger:     log,
	})
	classifier, err := agent.NewClassifier(gemini, catalog, log)
	if err != nil {
		log.Fatal("tool classifier initialization failed", zap.Error(err))
	}
	orchestrator := agent.NewOrchestrator(classifier, agent.NewDispatcher(toolbox, m, log), log)

	// ──── Step 7: Start Job Worker Pool and Storage Watcher ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		worker.NewWorksheetPipeline(store, gemini, catalog, worksheetRepo, activityRepo, log),
		worker.NewSyllabusPipeline(store, services.NewFileExtractService(services.DefaultMaxExtractChars), gemini, catalog, syllabusRepo, activityRepo, log),
		publisher,
		m,
		log,
		cfg.WorkerCount,
	)
	workerPool.Start()

	watcher := storage.NewWatcher(store, []string{"uploads", "syllabus_uploads"}, func(ctx context.Context, ev storage.ObjectEvent) {
		if err := workerPool.Enqueue(ctx, ev); err != nil && !errors.Is(err, worker.ErrUnroutable) {
			log.Error("failed to enqueue upload", zap.String("path", ev.Path), zap.Error(err))
		}
	}, storage.WithLogger(log))
	if err := watcher.Start(ctx); err != nil {
		log.Fatal("storage watcher failed to start", zap.Error(err))
	}

	// ──── Step 8: Start Proactive Scheduler ────
	scheduler, err := proactive.NewScheduler(
		proactive.SchedulerConfig{
			SuggestionSpec: cfg.SuggestionSchedule,
			BriefingSpec:   cfg.BriefingSchedule,
			Location:       cfg.Location(),
		},
		proactive.NewSuggestionEngine(activityRepo, suggestionRepo, gemini, catalog, publisher, m, log),
		proactive.NewBriefingEngine(syllabusRepo, briefingRepo, gemini, catalog, publisher, m, log),
		proactive.NewRedisLocker(redisClients.Queue),
		log,
	)
	if err != nil {
		log.Fatal("scheduler configuration invalid", zap.Error(err))
	}
	scheduler.Start()

	// ──── Step 9: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret, cfg.FrontendURL, log)

	// ──── Step 10: Start HTTP Server ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	r := router.New(jwtAuth, router.Handlers{
		Agent:      handlers.NewAgentHandler(orchestrator, log),
		Attendance: handlers.NewAttendanceHandler(toolbox, attendanceRepo, log),
		Content:    handlers.NewContentHandler(services.NewContentService(gemini, catalog, artifactRepo, activityRepo, log), log),
		Uploads:    handlers.NewUploadHandler(store, cfg.MaxUploadMB, log),
		History:    handlers.NewHistoryHandler(artifactRepo, worksheetRepo, activityRepo, syllabusRepo, log),
		Dashboard:  handlers.NewDashboardHandler(suggestionRepo, briefingRepo, log),
		Hub:        wsHub,
	}, router.Options{
		FrontendURL: cfg.FrontendURL,
		Metrics:     m,
		Logger:      log,
	})

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Generation routes wait on the model.
		WriteTimeout: cfg.GeminiTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)

		watcher.Stop()
		<-scheduler.Stop().Done()
		workerPool.Stop()
		wsHub.Close()
	}()

	log.Info("Sahayak backend ready",
		zap.String("api", fmt.Sprintf("http://localhost:%s/api/v1", cfg.Port)),
		zap.String("ws", fmt.Sprintf("ws://localhost:%s/api/v1/ws", cfg.Port)),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("server error", zap.Error(err))
	}
	<-shutdownDone
	log.Info("shutdown complete")
}
