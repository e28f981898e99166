package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"sahayak-backend/internal/handlers"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/metrics"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/websocket"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Agent      *handlers.AgentHandler
	Attendance *handlers.AttendanceHandler
	Content    *handlers.ContentHandler
	Uploads    *handlers.UploadHandler
	History    *handlers.HistoryHandler
	Dashboard  *handlers.DashboardHandler
	Hub        *websocket.Hub
}

type Options struct {
	FrontendURL string
	// GenerationLimit is the per-teacher request budget per minute for
	// routes that call the model.
	GenerationLimit int
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
}

func New(jwtAuth *middleware.JWTAuth, h Handlers, opts Options) http.Handler {
	if opts.GenerationLimit <= 0 {
		opts.GenerationLimit = 30
	}
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger.OrNop(opts.Logger).Named("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(opts.Metrics.Middleware)
	r.Use(middleware.CORS(opts.FrontendURL))

	genLimiter := middleware.NewRateLimiter(opts.GenerationLimit, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", opts.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Authenticates itself through the token query parameter.
		r.Get("/ws", h.Hub.HandleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// ──── Generation Routes ────
			r.Group(func(r chi.Router) {
				r.Use(genLimiter.Middleware)
				r.Post("/agent/orchestrate", h.Agent.Orchestrate)
				r.Post("/generate", h.Content.Generate)
				r.Post("/chalkboard", h.Content.Chalkboard)
				r.Post("/attendance/analyze", h.Attendance.Analyze)
			})

			// ──── Attendance Routes ────
			r.Post("/attendance", h.Attendance.Record)

			// ──── Upload Routes ────
			r.Route("/uploads", func(r chi.Router) {
				r.Post("/worksheet", h.Uploads.Worksheet)
				r.Post("/syllabus", h.Uploads.Syllabus)
			})

			// ──── History Routes ────
			r.Get("/artifacts/{kind}", h.History.Artifacts)
			r.Get("/worksheets", h.History.Worksheets)
			r.Get("/activity", h.History.Activity)
			r.Get("/syllabus", h.History.Syllabus)

			// ──── Dashboard Routes ────
			r.Get("/suggestions", h.Dashboard.Suggestions)
			r.Put("/suggestions/{id}/seen", h.Dashboard.MarkSuggestionSeen)
			r.Get("/briefings/latest", h.Dashboard.LatestBriefing)
			r.Put("/briefings/{id}/read", h.Dashboard.MarkBriefingRead)
		})
	})

	return r
}
