// Package app wires configuration into the API client, the session service
// and the gateway.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	_ "github.com/lib/pq"

	"linkup/portal/internal/api"
	"linkup/portal/internal/audit"
	"linkup/portal/internal/auth"
	"linkup/portal/internal/config"
	"linkup/portal/internal/httpserver"
	"linkup/portal/internal/routes"
)

type App struct {
	cfg *config.Config
	log *slog.Logger
	db  *sql.DB

	Client  *api.Client
	Session *auth.Service
	Audit   *audit.Logger
	Routes  *routes.Table
}

// NewLogger builds the process logger from the logging section. verbose
// forces debug level.
func NewLogger(cfg config.LoggingConfig, w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// New opens the session store, restores any persisted session and points
// the API client at it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	var db *sql.DB
	var store auth.Store
	if cfg.Session.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.Session.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		store, err = auth.NewPostgresStore(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create postgres session store: %w", err)
		}
	} else {
		store, err = auth.NewFileStore(cfg.Session.File)
		if err != nil {
			return nil, fmt.Errorf("create session store: %w", err)
		}
	}

	auditLogger := audit.NewLogger(cfg.Audit.File)
	session, err := auth.NewService(client, auth.ServiceConfig{
		Store:  store,
		Audit:  auditLogger,
		Logger: logger,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("create session service: %w", err)
	}
	session.Restore(ctx)
	client.SetTokenSource(session)

	return &App{
		cfg:     cfg,
		log:     logger,
		db:      db,
		Client:  client,
		Session: session,
		Audit:   auditLogger,
		Routes:  routes.DefaultTable(),
	}, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Decide runs the guard for path against the current session.
func (a *App) Decide(path string) (routes.Decision, routes.Route) {
	var user *auth.UserSummary
	if u, ok := a.Session.CurrentUser(); ok {
		user = &u
	}
	return a.Routes.Decide(user, path)
}

// Record appends an audit entry for a state-changing action taken by the
// current user. Failures are logged, never returned.
func (a *App) Record(action, target, outcome, detail string) {
	actor := ""
	if u, ok := a.Session.CurrentUser(); ok {
		actor = u.Email
	}
	if err := a.Audit.Log(actor, action, target, outcome, detail); err != nil {
		a.log.Debug("audit write failed", "action", action, "error", err)
	}
}

// Serve runs the gateway until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	server := httpserver.New(a.cfg.HTTP, httpserver.Deps{
		Session:         a.Session,
		Routes:          a.Routes,
		APIBaseURL:      a.Client.BaseURL(),
		FrontendDistDir: a.cfg.Frontend.DistDir,
		Logger:          a.log,
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("gateway starting", "addr", a.cfg.HTTP.Addr, "api", a.Client.BaseURL().String())
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	}
}
