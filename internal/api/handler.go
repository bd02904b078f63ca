// Package api exposes the JSON API the dashboard UI consumes.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"devwell-dashboard/internal/auth"
	"devwell-dashboard/internal/model"
)

// SleepRecords is the sleep store surface the handlers use.
type SleepRecords interface {
	GetRecords(ctx context.Context, userID string, start, end time.Time) []model.SleepRecord
	Create(ctx context.Context, rec model.SleepRecord) (*model.SleepRecord, error)
	Update(ctx context.Context, rec model.SleepRecord) (*model.SleepRecord, error)
	Delete(ctx context.Context, userID, id string) error
}

// CommitRecords is the commit store surface the handlers use.
type CommitRecords interface {
	GetRecords(ctx context.Context, userID string, start, end time.Time) []model.CommitRecord
	GetCommitStats(ctx context.Context, userID string, day time.Time) model.CommitStats
}

// InsightRecords is the insight store surface the handlers use.
type InsightRecords interface {
	GetRecords(ctx context.Context, userID string, start, end time.Time) []model.ActivityInsight
}

// Profiles is the profile store surface the handlers use.
type Profiles interface {
	Get(ctx context.Context, userID string) *model.Profile
	Upsert(ctx context.Context, p *model.Profile) error
	Update(ctx context.Context, p *model.Profile) (*model.Profile, error)
}

// SyncTrigger runs an on-demand commit sync for one user.
type SyncTrigger interface {
	SyncCommits(ctx context.Context, userID string) error
}

// Handler is the container for API dependencies.
type Handler struct {
	sleep    SleepRecords
	commits  CommitRecords
	insights InsightRecords
	profiles Profiles
	sync     SyncTrigger
	parser   *auth.Parser
	hub      *auth.Hub
	logger   *slog.Logger
}

// RouterConfig bundles the dependencies NewRouter wires together.
type RouterConfig struct {
	Sleep       SleepRecords
	Commits     CommitRecords
	Insights    InsightRecords
	Profiles    Profiles
	Sync        SyncTrigger
	Parser      *auth.Parser
	Hub         *auth.Hub
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(cfg RouterConfig) http.Handler {
	h := &Handler{
		sleep:    cfg.Sleep,
		commits:  cfg.Commits,
		insights: cfg.Insights,
		profiles: cfg.Profiles,
		sync:     cfg.Sync,
		parser:   cfg.Parser,
		hub:      cfg.Hub,
		logger:   cfg.Logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Use(h.sessionAuth)

		r.Route("/sleep", func(r chi.Router) {
			r.Get("/", h.listSleepRecords)
			r.Post("/", h.createSleepRecord)
			r.Put("/{id}", h.updateSleepRecord)
			r.Delete("/{id}", h.deleteSleepRecord)
		})

		r.Get("/commits", h.listCommits)
		r.Get("/commits/stats", h.getCommitStats)
		r.Get("/insights", h.listInsights)

		r.Get("/profile", h.getProfile)
		r.Put("/profile", h.updateProfile)

		r.Get("/reports/daily", h.getDailyReport)
		r.Get("/reports/monthly", h.getMonthlyReport)

		r.Post("/sync", h.triggerSync)
		r.Post("/auth/signout", h.signOut)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
