package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"asterbot/internal/config"
	"asterbot/internal/metrics"
	"asterbot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Store данные, которые отдает служебный API.
type Store interface {
	PingContext(ctx context.Context) error
	ListAds(ctx context.Context) ([]*models.Ad, error)
	GetSelectionStats(ctx context.Context, now time.Time) (*models.SelectionStats, error)
	GetSalesStats(ctx context.Context, activeSince time.Time) (*models.SalesStats, error)
}

// Pinger проверка внешней зависимости для /healthz.
type Pinger func(ctx context.Context) error

type HTTPDeps struct {
	Config *config.Config
	// Kind определяет, какая статистика отдается на /api/v1/stats.
	Kind   string
	Store  Store
	Redis  Pinger
	Logger *zerolog.Logger
}

// HTTPServer служебный HTTP API: health, метрики и защищенные ключом ручки.
type HTTPServer struct {
	cfg    *config.Config
	kind   string
	store  Store
	redis  Pinger
	engine *gin.Engine
	server *http.Server
	log    zerolog.Logger
	now    func() time.Time
}

func NewHTTPServer(d HTTPDeps) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	metrics.Register()

	log := componentLogger(d.Logger, "http")

	srv := &HTTPServer{
		cfg:   d.Config,
		kind:  d.Kind,
		store: d.Store,
		redis: d.Redis,
		log:   log,
		now:   time.Now,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), srv.requestLogger(), metricsMiddleware())

	engine.GET("/healthz", srv.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := NewAuth(d.Config.API)
	v1 := engine.Group("/api/v1")
	v1.POST("/filters/link", auth.Require(permFiltersLink), srv.handleFiltersLink)
	v1.GET("/ads", auth.Require(permReadAds), srv.handleListAds)
	v1.GET("/stats", auth.Require(permReadStats), srv.handleStats)

	srv.engine = engine
	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", d.Config.API.HTTP.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

// Handler нужен тестам и встраиванию.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Start блокируется до Shutdown.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDMetadataKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDMetadataKey, requestID)

		l := s.log.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()

		event := l.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = l.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("client_ip", c.ClientIP()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint, c.Writer.Status())
	}
}
