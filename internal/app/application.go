// Package app wires stores, services and configuration into a runnable
// application. Any store left nil falls back to the shared in-memory
// implementation, which keeps tests and local runs dependency-free.
package app

import (
	"net/http"

	"github.com/mindsoothe/backend/internal/config"
	"github.com/mindsoothe/backend/internal/httpapi"
	"github.com/mindsoothe/backend/internal/metrics"
	"github.com/mindsoothe/backend/internal/services/analysis"
	authsvc "github.com/mindsoothe/backend/internal/services/auth"
	journalsvc "github.com/mindsoothe/backend/internal/services/journal"
	letterssvc "github.com/mindsoothe/backend/internal/services/letters"
	profilesvc "github.com/mindsoothe/backend/internal/services/profile"
	settingssvc "github.com/mindsoothe/backend/internal/services/settings"
	"github.com/mindsoothe/backend/internal/storage"
	"github.com/mindsoothe/backend/internal/storage/memory"
	"github.com/mindsoothe/backend/pkg/logger"
)

// Stores collects the persistence interfaces the application needs.
type Stores struct {
	Users    storage.UserStore
	Entries  storage.EntryStore
	Settings storage.SettingsStore
	Profiles storage.ProfileStore
	Letters  storage.LetterStore
}

// Options carries the optional collaborators.
type Options struct {
	Revoker  authsvc.TokenRevoker
	Analyzer analysis.Client
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

// Application is the assembled service graph.
type Application struct {
	Auth     *authsvc.Service
	Journal  *journalsvc.Service
	Settings *settingssvc.Service
	Profile  *profilesvc.Service
	Letters  *letterssvc.Service

	cfg      config.Config
	analyzer analysis.Client
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// New assembles the application. Nil stores share one in-memory backend so
// that cross-store consistency (signup fan-out) holds.
func New(cfg config.Config, stores Stores, opts Options) *Application {
	log := opts.Logger
	if log == nil {
		log = logger.New(logger.LoggingConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	}

	if stores.Users == nil || stores.Entries == nil || stores.Settings == nil ||
		stores.Profiles == nil || stores.Letters == nil {
		mem := memory.New()
		if stores.Users == nil {
			stores.Users = mem
		}
		if stores.Entries == nil {
			stores.Entries = mem
		}
		if stores.Settings == nil {
			stores.Settings = mem
		}
		if stores.Profiles == nil {
			stores.Profiles = mem
		}
		if stores.Letters == nil {
			stores.Letters = mem
		}
	}

	authService := authsvc.New(stores.Users, authsvc.Config{
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: cfg.Auth.TokenTTL,
		Issuer:   cfg.Auth.Issuer,
	}, opts.Revoker, log.WithField("component", "auth"))

	return &Application{
		Auth:     authService,
		Journal:  journalsvc.New(stores.Entries, log.WithField("component", "journal")),
		Settings: settingssvc.New(stores.Settings, log.WithField("component", "settings")),
		Profile:  profilesvc.New(stores.Profiles, log.WithField("component", "profile")),
		Letters:  letterssvc.New(stores.Letters, stores.Entries, opts.Analyzer, log.WithField("component", "letters")),
		cfg:      cfg,
		analyzer: opts.Analyzer,
		metrics:  opts.Metrics,
		log:      log,
	}
}

// Handler builds the HTTP surface for the assembled services.
func (a *Application) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.Services{
		Auth:     a.Auth,
		Journal:  a.Journal,
		Settings: a.Settings,
		Profile:  a.Profile,
		Letters:  a.Letters,
		Analyzer: a.analyzer,
	}, httpapi.Options{
		CORS:      a.cfg.Server,
		RateLimit: a.cfg.RateLimit,
		Metrics:   a.metrics,
		Logger:    a.log.WithField("component", "httpapi"),
	})
}
