package server

import (
	"context"
	"errors"
	"fmt"
	"francoggm/mpesa-c2b-relay/internal/app/auth"
	"francoggm/mpesa-c2b-relay/internal/app/server/handlers"
	"francoggm/mpesa-c2b-relay/internal/config"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	cfg      *config.Config
	router   *chi.Mux
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewServer(cfg *config.Config, paymentService handlers.PaymentService, health handlers.HealthChecker, logger *zap.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		handlers: handlers.NewHandlers(cfg, paymentService, health, logger),
		logger:   logger,
	}

	srv.registerMiddlewares()
	srv.registerRoutes()
	return srv
}

func (s *Server) registerMiddlewares() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(loggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(upstreamBudget(s.cfg)))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
}

func (s *Server) registerRoutes() {
	s.router.Post("/register-url", s.handlers.RegisterURL)
	s.router.Post("/c2b-payment", s.handlers.SimulateC2BPayment)
	s.router.Post("/confirmation", s.handlers.Confirmation)
	s.router.Post("/validation", s.handlers.Validation)
	s.router.Get("/health", s.handlers.Health)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: upstreamBudget(s.cfg) + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server running", zap.String("port", s.cfg.Server.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

// upstreamBudget bounds one relay request: a token call and a forwarding call,
// plus the wait on a shared refresh when the token cache is in redis.
func upstreamBudget(cfg *config.Config) time.Duration {
	budget := 2*cfg.Mpesa.UpstreamTimeout + time.Second
	if cfg.TokenCache.Mode == config.TokenCacheRedis {
		budget += auth.MaxRefreshWait
	}
	return budget
}
