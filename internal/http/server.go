// Package http provides the HTTP API for nexusd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
	"github.com/fyrsmithlabs/nexusd/internal/services"
)

// Server provides HTTP endpoints for nexusd.
type Server struct {
	echo     *echo.Echo
	services services.Registry
	logger   *zap.Logger
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server over the service registry.
func NewServer(svcs services.Registry, logger *zap.Logger, cfg *Config) (*Server, error) {
	if svcs == nil {
		return nil, fmt.Errorf("service registry cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9180,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	metrics := NewHTTPMetrics(logger)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metrics.MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		services: svcs,
		logger:   logger,
		config:   cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check and metrics
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/ask", s.handleAsk)
	v1.POST("/actions/apply", s.handleApplyAction)
	v1.GET("/provenance/:requestId", s.handleProvenance)
}

// handleHealth probes every registered agent and reports aggregate status.
func (s *Server) handleHealth(c echo.Context) error {
	results := s.services.Agents().HealthCheckAll(c.Request().Context())

	status := "ok"
	code := http.StatusOK
	for _, healthy := range results {
		if !healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}
	return c.JSON(code, HealthResponse{Status: status, Agents: results})
}

// handleAsk routes one prompt through the orchestration core.
func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid ask request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt field is required")
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	nreq := &nexus.Request{
		ID:                  requestID,
		Prompt:              req.Prompt,
		TargetAgent:         req.TargetAgent,
		ConversationHistory: req.History,
		Metadata:            req.Metadata,
	}
	if req.UserID != "" {
		nreq.Context = &nexus.Context{UserID: req.UserID}
	}

	resp := s.services.Router().Handle(c.Request().Context(), nreq)
	return c.JSON(http.StatusOK, resp)
}

// handleApplyAction is the confirm boundary over HTTP: a draft submission
// either executes or yields a token; a token submission confirms or, with
// reject set, discards the previewed action.
func (s *Server) handleApplyAction(c echo.Context) error {
	var req ApplyActionRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid apply request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId field is required")
	}
	if (req.Action == nil) == (req.ConfirmationToken == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "exactly one of action or confirmationToken is required")
	}
	if req.Reject && req.ConfirmationToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reject requires a confirmationToken")
	}

	ctx := c.Request().Context()

	if req.ConfirmationToken != "" {
		if req.Reject {
			if err := s.services.Safety().Reject(req.ConfirmationToken, req.UserID); err != nil {
				return s.confirmError(err)
			}
			return c.JSON(http.StatusOK, ApplyActionResponse{Rejected: true})
		}
		action, err := s.services.Safety().Confirm(ctx, req.ConfirmationToken, req.UserID)
		if err != nil {
			return s.confirmError(err)
		}
		return c.JSON(http.StatusOK, ApplyActionResponse{Action: action})
	}

	result, err := s.services.Safety().Apply(ctx, *req.Action, req.UserID)
	if err != nil {
		if errors.Is(err, nexus.ErrInvalidAction) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error("action apply failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "action apply failed")
	}
	return c.JSON(http.StatusOK, ApplyActionResponse{
		NeedsConfirmation: result.NeedsConfirmation,
		Token:             result.Token,
		Action:            result.Action,
	})
}

// confirmError maps token resolution failures to HTTP status codes.
// Expired tokens are indistinguishable from unknown ones.
func (s *Server) confirmError(err error) error {
	switch {
	case errors.Is(err, nexus.ErrTokenNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "confirmation token not found or expired")
	case errors.Is(err, nexus.ErrTokenOwnerMismatch):
		return echo.NewHTTPError(http.StatusForbidden, "confirmation token belongs to a different user")
	case errors.Is(err, nexus.ErrTokenConfirmed):
		return echo.NewHTTPError(http.StatusConflict, "confirmation token already confirmed")
	default:
		s.logger.Error("action confirm failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "action confirm failed")
	}
}

// handleProvenance returns the audit records for one request.
func (s *Server) handleProvenance(c echo.Context) error {
	requestID := c.Param("requestId")
	records := s.services.Provenance().Store().ByRequest(requestID)
	if len(records) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no provenance for request")
	}
	return c.JSON(http.StatusOK, ProvenanceResponse{
		RequestID: requestID,
		Records:   records,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
