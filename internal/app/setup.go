package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/genai"

	"github.com/pagesmith/pagesmith/db"
	"github.com/pagesmith/pagesmith/internal/config"
	"github.com/pagesmith/pagesmith/internal/editor"
	"github.com/pagesmith/pagesmith/internal/generate"
	"github.com/pagesmith/pagesmith/internal/identity"
	"github.com/pagesmith/pagesmith/internal/store"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: newLogger(cfg)}

	// On error, release everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				a.Logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, dbCleanup, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.dbCleanup = dbCleanup
	a.DBPool = pool

	a.Store = store.New(pool, a.Logger.With("component", "store"))
	a.Resolver = identity.New(a.Store, a.Logger.With("component", "identity"))

	client, err := provideGenerationClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Generator = generate.New(generate.Config{
		Client:      client,
		Model:       cfg.ModelName,
		Temperature: cfg.Temperature,
		Logger:      a.Logger.With("component", "generate"),
	})

	svc, err := editor.New(editor.Config{
		Identities: a.Resolver,
		Documents:  a.Store,
		Generator:  a.Generator,
		Logger:     a.Logger.With("component", "editor"),
	})
	if err != nil {
		return nil, err
	}
	a.Editor = svc

	a.Logger.Info("application initialized",
		"generation", describeGeneration(cfg),
		"postgres", fmt.Sprintf("%s:%d/%s", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDBName),
	)

	return a, nil
}

// provideDBPool runs migrations and creates the connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, pool.Close, nil
}

// provideGenerationClient creates the genai client, or nil when no API key
// is configured. The nil client flows into the generate adapter, which
// answers ErrNotConfigured at call time instead of failing startup.
func provideGenerationClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	if !cfg.GenerationConfigured() {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generation client: %w", err)
	}
	return client, nil
}
