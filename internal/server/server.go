// Package server wires the router, middleware, and handlers together
// and owns the process lifecycle: it is the composition root, and the
// place where the database handle is opened and eventually closed.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/geodata-manager/internal/auth"
	"github.com/sakif/geodata-manager/internal/handler"
	"github.com/sakif/geodata-manager/internal/middleware"
	sqliteRepo "github.com/sakif/geodata-manager/internal/repository/sqlite"
	"github.com/sakif/geodata-manager/internal/service"
	"github.com/sakif/geodata-manager/internal/storage"
	"github.com/sakif/geodata-manager/internal/upload"
)

type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	// UploadDir is the local directory served at /uploads/*. Empty when
	// files live in object storage and are served from there.
	UploadDir string
}

// Server owns the router and the database handle. The handle is closed
// during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// repositories → services → handlers → routes. The file store is built
// by the caller since its backend is a deployment choice.
func New(cfg Config, files storage.FileStore, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(files, tokens)
	return s, nil
}

func (s *Server) setupRoutes(files storage.FileStore, tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	if s.config.UploadDir != "" {
		fileServer := http.FileServer(http.Dir(s.config.UploadDir))
		s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))
	}

	authService := service.NewAuthService(s.db.Users(), auth.NewPasswordService(), tokens, s.logger)
	geoService := service.NewGeoDataService(s.db.GeoData(), files, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	geoHandler := handler.NewGeoDataHandler(geoService, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	gate := upload.Gate(files, s.logger)

	s.router.Route("/api/users", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.With(requireAuth).Get("/account", authHandler.HandleAccount)
	})

	s.router.Route("/api/geoData", func(r chi.Router) {
		r.Use(requireAuth)
		// The gate stores the file before the handler runs; update uses
		// it too since a replacement file is optional there.
		r.With(gate).Post("/upload", geoHandler.HandleUpload)
		r.Get("/list", geoHandler.HandleList)
		r.Get("/my-geodata", geoHandler.HandleMine)
		r.With(gate).Put("/{id}", geoHandler.HandleUpdate)
		r.Patch("/{id}/toggle", geoHandler.HandleToggle)
		r.Delete("/{id}", geoHandler.HandleDelete)
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
