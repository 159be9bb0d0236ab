// Package api is the thin HTTP/WebSocket adapter over the orchestrator and
// Event Bus (spec §6): it owns no pipeline logic of its own, only request
// parsing, response shaping and error mapping.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/eventbus"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/orchestrator"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/taskstore"
)

// Server is the HTTP/WebSocket surface described in spec §6.
type Server struct {
	orch  *orchestrator.Orchestrator
	tasks *taskstore.Store
	bus   *eventbus.Bus

	engine *gin.Engine
	http   *http.Server
	log    *slog.Logger
}

// NewServer builds a Server with every route registered.
func NewServer(orch *orchestrator.Orchestrator, tasks *taskstore.Store, bus *eventbus.Bus) *Server {
	s := &Server{
		orch:  orch,
		tasks: tasks,
		bus:   bus,
		log:   slog.With("component", "api"),
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), securityHeaders())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/events", s.handleEvents)

	s.engine.POST("/bundle/generate", s.handleGenerate)
	s.engine.GET("/bundle/status/:taskId", s.handleStatus)
	s.engine.POST("/bundle/approval/:taskId", s.handleApproval)
	s.engine.POST("/bundle/retry-validation/:taskId", s.handleRetryValidation)
	s.engine.POST("/bundle/regenerate/:taskId", s.handleRegenerate)
	s.engine.GET("/bundle/:bundleId", s.handleGetBundle)
}

// Engine exposes the underlying router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run starts the HTTP server and blocks until it exits or is shut down.
func (s *Server) Run(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.engine}
	s.log.Info("http server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
