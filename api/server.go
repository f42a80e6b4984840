package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(ctx context.Context, database database.Database, c map[string]string) (Server, error) {
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	mailer, err := services.NewMailerFromConfig(c)
	if err != nil {
		return Server{}, fmt.Errorf("failed to configure mailer: %w", err)
	}
	storage, err := services.NewStorageFromConfig(ctx, c)
	if err != nil {
		return Server{}, fmt.Errorf("failed to configure storage: %w", err)
	}

	router := newRouter(database,
		withConfig(c),
		withStartupTime(startupTime),
		withMailer(mailer),
		withStorage(storage),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  config.GetSeconds(c, "READ_TIMEOUT_SECONDS", 180),
		WriteTimeout: config.GetSeconds(c, "WRITE_TIMEOUT_SECONDS", 180),
		IdleTimeout:  config.GetSeconds(c, "IDLE_TIMEOUT_SECONDS", 180),
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	mailer      services.Mailer
	storage     services.Storage
	serviceOpts []services.Option
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withMailer(mailer services.Mailer) func(*router) {
	return func(r *router) {
		r.mailer = mailer
	}
}

func withStorage(storage services.Storage) func(*router) {
	return func(r *router) {
		r.storage = storage
	}
}

func withServiceOptions(opts ...services.Option) func(*router) {
	return func(r *router) {
		r.serviceOpts = append(r.serviceOpts, opts...)
	}
}

// settings are the request-handling values read from config.
type settings struct {
	sessionSecret       string
	sessionTTL          time.Duration
	secureCookies       bool
	baseURL             string
	staticDir           string
	acceptedOrigins     []string
	concealUnknownEmail bool
}

func (r router) settings() settings {
	s := settings{
		sessionSecret:       config.GetString(r.config, "SESSION_SECRET", ""),
		sessionTTL:          time.Duration(config.GetInt(r.config, "SESSION_TTL_HOURS", 24)) * time.Hour,
		secureCookies:       config.GetBool(r.config, "SECURE_COOKIES", false),
		baseURL:             config.GetString(r.config, "BASE_URL", ""),
		staticDir:           config.GetString(r.config, "STATIC_DIR", "static"),
		acceptedOrigins:     config.GetList(r.config, "ACCEPTED_ORIGINS"),
		concealUnknownEmail: config.GetBool(r.config, "RESET_CONCEAL_UNKNOWN_EMAIL", false),
	}
	if s.sessionSecret == "" {
		s.sessionSecret = randomSecret()
		log.Warn().Msg("SESSION_SECRET is not set, using a random secret; sessions will not survive a restart")
	}
	return s
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate session secret: %v", err))
	}
	return hex.EncodeToString(b)
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if router.startupTime.IsZero() {
		router.startupTime = time.Now()
	}
	s := router.settings()
	if router.mailer == nil {
		router.mailer = &services.ConsoleMailer{Out: os.Stdout}
	}
	if router.storage == nil {
		router.storage = services.NewLocalStorage(filepath.Join(s.staticDir, services.UploadPrefix))
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(PrometheusMiddleware)
	chiRouter.Use(HTTPLoggingMiddleware(log.With().Str("component", "http").Logger()))
	if len(s.acceptedOrigins) > 0 {
		chiRouter.Use(corsMiddleware(s.acceptedOrigins))
	}

	sessions := newSessionManager(s.sessionSecret, s.sessionTTL, s.secureCookies)
	handlers := initializeHandlers(database, router, sessions, s)
	authMiddleware := newAuthMiddleware(sessions, database.UserRepo())

	chiRouter.Use(authMiddleware.loadSession)

	// Static assets, operational endpoints and the site itself
	setupOperationalRoutes(chiRouter, handlers, s.staticDir)
	setupFrontendRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func setupOperationalRoutes(r chi.Router, handlers *routeHandlers, staticDir string) {
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.Get("/healthz", handlers.healthHandler.healthz())
	r.Handle("/metrics", promhttp.Handler())
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
