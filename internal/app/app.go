// Package app wires configuration, storage, generation, and the edit
// pipeline into a running application.
//
// All dependencies are constructed once in Setup and passed explicitly;
// there is no lazily-initialized global state. An absent generation API key
// is not a startup failure: the generator is wired unconfigured and edit
// requests surface generate.ErrNotConfigured.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagesmith/pagesmith/internal/config"
	"github.com/pagesmith/pagesmith/internal/editor"
	"github.com/pagesmith/pagesmith/internal/generate"
	"github.com/pagesmith/pagesmith/internal/identity"
	"github.com/pagesmith/pagesmith/internal/log"
	"github.com/pagesmith/pagesmith/internal/store"
)

// App holds the application's wired components.
type App struct {
	Config *config.Config
	Logger log.Logger

	DBPool    *pgxpool.Pool
	Store     *store.Store
	Resolver  *identity.Resolver
	Generator *generate.Adapter
	Editor    *editor.Service

	dbCleanup func()
}

// Close releases all resources acquired during Setup.
// Safe to call on a partially-initialized App.
func (a *App) Close() error {
	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
	}
	return nil
}

// newLogger builds the application logger from configuration.
func newLogger(cfg *config.Config) log.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON})
}

// describeGeneration summarizes generation availability for startup logs
// without touching the secret itself.
func describeGeneration(cfg *config.Config) string {
	if cfg.GenerationConfigured() {
		return fmt.Sprintf("model %s", cfg.ModelName)
	}
	return "not configured (set GEMINI_API_KEY)"
}
