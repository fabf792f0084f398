package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bizsync/internal/database"
	"bizsync/internal/features"
	"bizsync/internal/middleware"
	"bizsync/internal/models"
	"bizsync/internal/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server exposes the local control API consumed by the directory client UI.
type Server struct {
	router  *mux.Router
	logger  *logrus.Logger
	cfg     *models.Config
	db      *database.Database
	actions *service.ActionService
	engine  *service.SyncEngine
	status  *service.StatusService
	server  *http.Server
}

func NewServer(cfg *models.Config, db *database.Database, actions *service.ActionService, engine *service.SyncEngine, status *service.StatusService, logger *logrus.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		logger:  logger,
		cfg:     cfg,
		db:      db,
		actions: actions,
		engine:  engine,
		status:  status,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check and metrics stay outside the observability middleware
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	// The websocket feed bypasses the middleware too: the response
	// wrapper does not implement http.Hijacker.
	if features.IsEnabled(features.FlagStatusFeed) {
		s.router.HandleFunc("/api/status/ws", s.handleStatusFeed()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ObservabilityMiddleware(s.logger))

	api.HandleFunc("/actions", s.handleSubmitAction()).Methods(http.MethodPost)
	api.HandleFunc("/actions/failed", s.handleListFailedActions()).Methods(http.MethodGet)
	api.HandleFunc("/actions/failed/{id}/requeue", s.handleRequeueFailedAction()).Methods(http.MethodPost)
	api.HandleFunc("/status", s.handleStatus()).Methods(http.MethodGet)
	api.HandleFunc("/sync", s.handleSyncNow()).Methods(http.MethodPost)
	api.HandleFunc("/cache", s.handleClearCache()).Methods(http.MethodDelete)
	api.HandleFunc("/token", s.handleSetToken()).Methods(http.MethodPut)
	api.HandleFunc("/features", s.handleListFeatures()).Methods(http.MethodGet)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Infof("Starting control server on port %d", s.cfg.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
