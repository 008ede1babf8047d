// Package server is the composition root: it builds services and handlers
// over the store, mounts every route and runs the HTTP server until a
// shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/media"
	"github.com/sakif/portfolio/internal/middleware"
	"github.com/sakif/portfolio/internal/repository/sqlstore"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/web"
)

// Server owns the router and the database. The database is closed when
// Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqlstore.DB
	store  media.Store
	tokens *auth.TokenService // nil when auth is disabled
}

// New wires every service and handler over db and store.
func New(cfg *config.Config, db *sqlstore.DB, store media.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		store:  store,
	}

	if cfg.AuthEnabled() {
		tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("creating token service: %w", err)
		}
		s.tokens = tokens
	} else {
		logger.Warn("JWT_SECRET not set, admin routes will reject every request")
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}).Handler)
	}

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return fmt.Errorf("opening static assets: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	db := s.db
	projects := service.NewProjectService(db.Projects(), db.Skills(), s.store, s.logger)
	skills := service.NewSkillService(db.Skills(), s.store, s.logger)
	generalSkills := service.NewGeneralSkillService(db.GeneralSkills(), s.logger)
	experience := service.NewExperienceService(db.Experiences(), s.store, s.logger)
	education := service.NewEducationService(db.Education(), s.store, s.logger)
	quotes := service.NewQuoteService(db.Quotes(), s.logger)
	profile := service.NewProfileService(db.Profile(), s.store, s.logger)
	about := service.NewAboutService(db.About(), s.logger)
	settings := service.NewSiteSettingsService(db.SiteSettings(), s.logger)
	uploads := service.NewUploadService(s.store, s.config.Media.Folder, s.logger)
	dashboard := service.NewDashboardService(db.Projects(), db.Skills(), db.Experiences(), db.Quotes())
	home := service.NewHomeService(service.HomeRepos{
		Profile:       db.Profile(),
		Projects:      db.Projects(),
		GeneralSkills: db.GeneralSkills(),
		Education:     db.Education(),
		Experience:    db.Experiences(),
		Quotes:        db.Quotes(),
		About:         db.About(),
		Settings:      db.SiteSettings(),
	}, s.logger)
	authService := service.NewAuthService(db.Users(), s.tokens, auth.NewPasswordService(), nil, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	projectHandler := handler.NewProjectHandler(projects)
	skillHandler := handler.NewSkillHandler(skills)
	generalSkillHandler := handler.NewGeneralSkillHandler(generalSkills)
	experienceHandler := handler.NewExperienceHandler(experience)
	educationHandler := handler.NewEducationHandler(education)
	quoteHandler := handler.NewQuoteHandler(quotes)
	profileHandler := handler.NewProfileHandler(profile, about, settings)
	uploadHandler := handler.NewUploadHandler(uploads)
	adminHandler := handler.NewAdminHandler(dashboard)
	authHandler := handler.NewAuthHandler(authService, github, s.config.SessionTTL, s.config.CookieSecure, s.logger)

	pageHandler, err := handler.NewPageHandler(home, web.FS, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(s.tokens))
		r.Get("/", pageHandler.HandleHome)
		r.Get("/projects", pageHandler.HandleProjects)
		r.Get("/about", pageHandler.HandleAbout)
	})

	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/home", pageHandler.HandleHomeJSON)
		r.Get("/about", profileHandler.HandleGetAbout)
		r.Get("/profile", profileHandler.HandleGetProfile)
		r.Get("/projects", projectHandler.HandleList)
		r.Get("/projects/{id}", projectHandler.HandleGet)
		r.Get("/skills", skillHandler.HandleList)
		r.Get("/general-skills", generalSkillHandler.HandleList)
		r.Get("/general-skills/{id}", generalSkillHandler.HandleGet)
		r.Get("/experience", experienceHandler.HandleList)
		r.Get("/experience/{id}", experienceHandler.HandleGet)
		r.Get("/education", educationHandler.HandleList)
		r.Get("/education/{id}", educationHandler.HandleGet)
		r.Get("/quotes", quoteHandler.HandleList)

		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(s.tokens))

			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/admin/change-password", authHandler.HandleChangePassword)
			r.Get("/admin/stats", adminHandler.HandleStats)

			r.Put("/about", profileHandler.HandleSaveAbout)
			r.Post("/profile", profileHandler.HandleSaveProfile)
			r.Put("/profile", profileHandler.HandleSaveProfile)
			r.Get("/site-settings", profileHandler.HandleGetSettings)
			r.Put("/site-settings", profileHandler.HandleSaveSettings)

			r.Post("/projects", projectHandler.HandleCreate)
			r.Put("/projects/{id}", projectHandler.HandleUpdate)
			r.Delete("/projects/{id}", projectHandler.HandleDelete)

			r.Post("/skills", skillHandler.HandleCreate)
			r.Put("/skills/{id}", skillHandler.HandleUpdate)
			r.Delete("/skills/{id}", skillHandler.HandleDelete)

			r.Post("/general-skills", generalSkillHandler.HandleCreate)
			r.Put("/general-skills/{id}", generalSkillHandler.HandleUpdate)
			r.Delete("/general-skills/{id}", generalSkillHandler.HandleDelete)

			r.Post("/experience", experienceHandler.HandleCreate)
			r.Put("/experience/{id}", experienceHandler.HandleUpdate)
			r.Delete("/experience/{id}", experienceHandler.HandleDelete)

			r.Post("/education", educationHandler.HandleCreate)
			r.Put("/education/{id}", educationHandler.HandleUpdate)
			r.Delete("/education/{id}", educationHandler.HandleDelete)

			r.Post("/quotes", quoteHandler.HandleCreate)
			r.Put("/quotes/{id}", quoteHandler.HandleUpdate)
			r.Delete("/quotes/{id}", quoteHandler.HandleDelete)

			r.Post("/upload", uploadHandler.HandleUpload)
			r.Post("/upload/delete", uploadHandler.HandleDelete)
		})
	})

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // uploads forward to the media host
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", string(s.db.Dialect())),
			slog.Bool("auth", s.tokens != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
