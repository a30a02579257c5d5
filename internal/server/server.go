// Package server exposes profile generation over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cxd309/motion-profiler/internal/engine"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// Config configures a Server.
type Config struct {
	MaxBodyBytes int64
	MaxStates    int // per profile; 0 uses engine.DefaultMaxStates
}

// Server serves profile requests.
//
// POST /v1/profile generates from samples inlined in the request. When the
// server was started over a sample file, GET /v1/profile?distance=D generates
// from that store.
type Server struct {
	cfg     Config
	engine  *engine.Engine // nil when no sample file was loaded
	logger  *slog.Logger
	metrics *metrics
	reg     *prometheus.Registry
}

// New returns a Server. eng may be nil; a nil logger discards output.
func New(cfg Config, eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := prometheus.NewRegistry()
	return &Server{
		cfg:     cfg,
		engine:  eng,
		logger:  logger,
		metrics: newMetrics(reg),
		reg:     reg,
	}
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID)

	v1 := r.Group("/v1")
	v1.GET("/health", s.handleHealth)
	v1.POST("/profile", s.handleInlineProfile)
	v1.GET("/profile", s.handleStoredProfile)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})))
	return r
}

func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status      string `json:"status"`
	StoreLoaded bool   `json:"store_loaded"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", StoreLoaded: s.engine != nil})
}

func (s *Server) handleInlineProfile(c *gin.Context) {
	if s.cfg.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	}
	var in engine.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	start := time.Now()
	log, err := engine.Execute(in, s.logger, engine.WithMaxStates(s.cfg.MaxStates))
	s.respond(c, log, err, start)
}

func (s *Server) handleStoredProfile(c *gin.Context) {
	if s.engine == nil {
		s.fail(c, http.StatusServiceUnavailable, "unavailable", errors.New("no sample file loaded"))
		return
	}
	d, err := strconv.ParseFloat(c.Query("distance"), 64)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "bad_request", errors.New("distance query parameter must be a number"))
		return
	}
	start := time.Now()
	log, err := s.engine.Run(d)
	s.respond(c, log, err, start)
}

func (s *Server) respond(c *gin.Context, log engine.ProfileLog, err error, start time.Time) {
	switch {
	case errors.Is(err, engine.ErrNonPositiveDistance),
		errors.Is(err, engine.ErrNoForwardSamples),
		errors.Is(err, engine.ErrTooManyStates):
		s.fail(c, http.StatusUnprocessableEntity, "degenerate", err)
		return
	case err != nil:
		s.fail(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.states.Observe(float64(len(log.States)))
	s.metrics.requests.WithLabelValues("ok").Inc()
	s.logger.Info("profile served",
		"request_id", c.GetString(RequestIDHeader),
		"distance", log.Distance,
		"states", len(log.States),
	)
	c.JSON(http.StatusOK, log)
}

func (s *Server) fail(c *gin.Context, status int, result string, err error) {
	s.metrics.requests.WithLabelValues(result).Inc()
	id := c.GetString(RequestIDHeader)
	s.logger.Warn("profile request failed", "request_id", id, "status", status, "error", err)
	c.JSON(status, ErrorResponse{Error: err.Error(), RequestID: id})
}
