// Package inspect serves a read-only HTTP view of a running instance: its
// capabilities, ledger, performance summary and Prometheus metrics.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vk/hotswap/internal/ledger"
	"github.com/vk/hotswap/internal/observability"
	"github.com/vk/hotswap/internal/perf"
	"github.com/vk/hotswap/internal/registry"
)

// ShutdownTimeout bounds a graceful Close.
const ShutdownTimeout = 5 * time.Second

// Deps are the components the server reads from.
type Deps struct {
	Instance string
	Registry *registry.Registry
	Ledger   *ledger.Ledger
	Perf     *perf.Aggregator
	// Metrics is optional; without it /metrics is not routed.
	Metrics *observability.Metrics
	Logger  *slog.Logger
	// AllowOrigins restricts CORS. Empty allows any origin.
	AllowOrigins []string
	StartedAt    time.Time
}

// Server owns the router and, once started, the listener.
type Server struct {
	deps   Deps
	router *gin.Engine
	srv    *http.Server
	addr   string
}

// New builds the router.
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}
	s := &Server{deps: d}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(indexTemplate)
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.deps.Logger.Error("Inspection handler panicked.", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(http.StatusInternalServerError,
			"Internal Server Error", "An unexpected error occurred"))
	}))
	r.Use(observability.RequestLogger(s.deps.Logger))
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.RequestMetricsMiddleware())
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.deps.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.deps.AllowOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/", s.index)
	r.GET("/health", s.health)
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/capabilities", s.listCapabilities)
		api.GET("/capabilities/:name/history", s.history)
		api.GET("/capabilities/:name/diff", s.diff)
		api.GET("/summary", s.summary)
		api.GET("/ledger", s.ledgerEntries)
		api.GET("/system-info", s.systemInfo)
		api.GET("/server-data", s.serverData)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody(http.StatusNotFound,
			"Not Found", "The requested resource does not exist"))
	})
	return r
}

// Start listens on port (0 picks a free one) and serves in the background.
func (s *Server) Start(port int) error {
	logger := s.deps.Logger
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("inspection server: %w", err)
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🔎 Inspection server starting", "address", "http://"+s.addr)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Inspection server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	return s.addr
}

// Close shuts the server down gracefully. It is a no-op if never started.
func (s *Server) Close(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	s.deps.Logger.Info("🔎 Shutting down inspection server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("inspection server shutdown: %w", err)
	}
	return nil
}

func errorBody(status int, title, message string) gin.H {
	return gin.H{"error": title, "message": message, "status": status}
}
