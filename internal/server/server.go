// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects storage, services,
// handlers, middleware and routes, and owns the process lifecycle.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config
//	  → sqlite.DB                     (implements repository.*Repository)
//	  → notify.Notifier → notify.Queue
//	  → service.{Entry,Auth,System}Service
//	  → handler.{Entry,Auth,System}Handler
//	  → chi routes
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/dailylog/internal/auth"
	"github.com/sakif/dailylog/internal/config"
	"github.com/sakif/dailylog/internal/handler"
	"github.com/sakif/dailylog/internal/middleware"
	"github.com/sakif/dailylog/internal/notify"
	sqliteRepo "github.com/sakif/dailylog/internal/repository/sqlite"
	"github.com/sakif/dailylog/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection and the notification queue. Run
// stops both on the way out; tests that never call Run use Close.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	queue  *notify.Queue
}

// New opens the database, builds every service and registers the routes.
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` so it is not mistaken for
// the modernc.org/sqlite driver.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	notifier, err := notify.FromConfig(cfg.Email, cfg.Notify.SendTimeout, cfg.Progress.Location)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating notifier: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
		queue:  notify.NewQueue(notifier, cfg.Notify, logger.With(slog.String("component", "notify"))),
	}

	// === SERVICES ===
	// Each service receives repository interfaces, never the concrete DB type.
	entries := service.NewEntryService(db, s.queue, cfg.Progress, logger)
	users := service.NewAuthService(db, tokens, auth.NewPasswordService(cfg.Auth.BcryptCost), logger)
	system := service.NewSystemService(cfg.Env, db, notifier, logger)

	// === GITHUB OAUTH (optional) ===
	// Left as a nil interface when unconfigured; the handler answers 404.
	var github handler.GitHubOAuth
	if cfg.Auth.GitHubEnabled() {
		callback := cfg.Auth.GitHubCallbackURL
		if callback == "" {
			callback = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Server.Port)
		}
		github = auth.NewGitHubProvider(cfg.Auth.GitHubClientID, cfg.Auth.GitHubClientSecret, callback)
	}

	s.routes(
		tokens,
		handler.NewEntryHandler(entries, logger),
		handler.NewAuthHandler(users, github, handler.CookieOptions{
			MaxAge: cfg.Auth.TokenTTL,
			Secure: cfg.Auth.SecureCookie,
		}, logger),
		handler.NewSystemHandler(system, logger),
	)

	return s, nil
}

// routes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                  → liveness
//	GET    /metrics                  → prometheus exposition
//	POST   /auth/register            → create account, set cookie
//	POST   /auth/login               → log in, set cookie
//	POST   /auth/logout              → clear cookie
//	GET    /auth/github/login        → redirect to GitHub
//	GET    /auth/github/callback     → finish OAuth, set cookie
//	GET    /api/categories           → known categories
//	GET    /api/status               → environment / storage / email flags
//	GET    /api/me                   → current user                 [auth]
//	GET    /api/logs                 → filtered list                [auth]
//	POST   /api/logs                 → create                       [auth]
//	POST   /api/logs/sync            → merge an offline cache       [auth]
//	GET    /api/logs/{id}            → one entry                    [auth]
//	PUT    /api/logs/{id}            → edit                         [auth]
//	DELETE /api/logs/{id}            → delete                       [auth]
//	GET    /api/progress             → course progress              [auth]
//	GET    /api/test-email           → send a test notification     [auth]
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the logger can print the ID. Recoverer sits inside
// the logger so a recovered panic is still logged as a 500.
func (s *Server) routes(tokens *auth.TokenService, entries *handler.EntryHandler, users *handler.AuthHandler, system *handler.SystemHandler) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           s.cfg.CORS.MaxAge,
	}))

	r.Get("/healthz", system.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", users.HandleRegister)
		r.Post("/login", users.HandleLogin)
		r.Post("/logout", users.HandleLogout)
		r.Get("/github/login", users.HandleGitHubLogin)
		r.Get("/github/callback", users.HandleGitHubCallback)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", system.HandleCategories)
		r.Get("/status", system.HandleStatus)

		// Everything below needs a valid JWT (cookie or Bearer header).
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", users.HandleMe)
			r.Get("/progress", entries.HandleProgress)
			r.Get("/test-email", system.HandleTestEmail)

			r.Route("/logs", func(r chi.Router) {
				r.Get("/", entries.HandleList)
				r.Post("/", entries.HandleCreate)
				r.Post("/sync", entries.HandleSync)
				r.Get("/{id}", entries.HandleGet)
				r.Put("/{id}", entries.HandleUpdate)
				r.Delete("/{id}", entries.HandleDelete)
			})
		})
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Run calls it itself.
func (s *Server) Close() error {
	return s.db.Close()
}

// Run serves HTTP and runs the notification queue until ctx is canceled,
// then shuts both down.
//
// GRACEFUL SHUTDOWN ORDER:
//  1. Stop accepting connections and wait for in-flight requests
//     (bounded by server.shutdown_timeout)
//  2. Stop the queue: it drains what those requests enqueued
//  3. Close the database
//
// Step 2 only starts after step 1, so a request finishing during shutdown
// can still schedule its notification.
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port)),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.queue.Run(queueCtx)
	})

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("env", s.cfg.Env),
			slog.String("database", s.cfg.Database.Path),
			slog.Bool("emailEnabled", s.queue.Enabled()),
			slog.Bool("githubLogin", s.cfg.Auth.GitHubEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer stopQueue()
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
