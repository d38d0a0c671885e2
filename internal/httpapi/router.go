// Package httpapi exposes the service over REST. All journaling routes live
// under /api and require a bearer token; auth endpoints are public but
// rate-limited per client.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mindsoothe/backend/internal/config"
	"github.com/mindsoothe/backend/internal/metrics"
	"github.com/mindsoothe/backend/internal/services/analysis"
	authsvc "github.com/mindsoothe/backend/internal/services/auth"
	journalsvc "github.com/mindsoothe/backend/internal/services/journal"
	letterssvc "github.com/mindsoothe/backend/internal/services/letters"
	profilesvc "github.com/mindsoothe/backend/internal/services/profile"
	settingssvc "github.com/mindsoothe/backend/internal/services/settings"
	"github.com/mindsoothe/backend/pkg/logger"
)

// Services bundles everything the router serves.
type Services struct {
	Auth     *authsvc.Service
	Journal  *journalsvc.Service
	Settings *settingssvc.Service
	Profile  *profilesvc.Service
	Letters  *letterssvc.Service
	Analyzer analysis.Client
}

// Options tunes cross-cutting router behavior.
type Options struct {
	CORS      config.ServerConfig
	RateLimit config.RateLimitConfig
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// NewRouter builds the full route table.
func NewRouter(svcs Services, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("httpapi")
	}

	audit := newAuditLog(1000, log)
	authH := &authHandler{svc: svcs.Auth, audit: audit, log: log}
	journalH := &journalHandler{svc: svcs.Journal, log: log}
	settingsH := &settingsHandler{svc: svcs.Settings, log: log}
	profileH := &profileHandler{svc: svcs.Profile, log: log}
	lettersH := &lettersHandler{svc: svcs.Letters, log: log}
	aiH := &aiHandler{
		analyzer: svcs.Analyzer,
		letters:  svcs.Letters,
		settings: svcs.Settings,
		metrics:  opts.Metrics,
		log:      log,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	requireAuth := authenticate(svcs.Auth, log)

	// Public auth endpoints, throttled per client IP.
	rps := opts.RateLimit.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := opts.RateLimit.Burst
	if burst <= 0 {
		burst = 10
	}
	limiter := newRateLimiter(rps, burst, log)

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/signup", limiter.handler(http.HandlerFunc(authH.signup))).Methods(http.MethodPost)
	auth.Handle("/signin", limiter.handler(http.HandlerFunc(authH.signin))).Methods(http.MethodPost)
	auth.Handle("/signout", requireAuth(http.HandlerFunc(authH.signout))).Methods(http.MethodPost)
	auth.Handle("/me", requireAuth(http.HandlerFunc(authH.me))).Methods(http.MethodGet)

	// Fixed journal paths register before the {id} wildcard so "unlocked"
	// and "stats" are never read as entry ids.
	journal := api.PathPrefix("/journal").Subrouter()
	journal.Use(requireAuth)
	journal.HandleFunc("/unlocked/all", journalH.unlocked).Methods(http.MethodGet)
	journal.HandleFunc("/stats/mood", journalH.moodStats).Methods(http.MethodGet)
	journal.HandleFunc("/stats/weekly", journalH.weeklySummary).Methods(http.MethodGet)
	journal.HandleFunc("", journalH.create).Methods(http.MethodPost)
	journal.HandleFunc("", journalH.list).Methods(http.MethodGet)
	journal.HandleFunc("/{id}", journalH.get).Methods(http.MethodGet)
	journal.HandleFunc("/{id}", journalH.update).Methods(http.MethodPut)
	journal.HandleFunc("/{id}", journalH.delete).Methods(http.MethodDelete)

	settings := api.PathPrefix("/settings").Subrouter()
	settings.Use(requireAuth)
	settings.HandleFunc("", settingsH.get).Methods(http.MethodGet)
	settings.HandleFunc("", settingsH.update).Methods(http.MethodPut)

	profile := api.PathPrefix("/profile").Subrouter()
	profile.Use(requireAuth)
	profile.HandleFunc("", profileH.get).Methods(http.MethodGet)
	profile.HandleFunc("", profileH.update).Methods(http.MethodPut)

	letters := api.PathPrefix("/weekly-letters").Subrouter()
	letters.Use(requireAuth)
	letters.HandleFunc("/week", lettersH.getByWeek).Methods(http.MethodGet)
	letters.HandleFunc("", lettersH.list).Methods(http.MethodGet)

	ai := api.PathPrefix("/ai").Subrouter()
	ai.Use(requireAuth)
	ai.HandleFunc("/analyze-entry", aiH.analyzeEntry).Methods(http.MethodPost)
	ai.HandleFunc("/generate-weekly-letter", aiH.generateWeeklyLetter).Methods(http.MethodPost)

	cors := newCORS(opts.CORS.AllowedOrigins)
	return cors.handler(instrument(opts.Metrics, "api", r))
}
