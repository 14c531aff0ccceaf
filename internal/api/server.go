package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/coraldb/coraldb/internal/database"
	"github.com/coraldb/coraldb/internal/logging"
	"github.com/coraldb/coraldb/internal/ratelimit"
	"github.com/coraldb/coraldb/internal/search"
	"github.com/coraldb/coraldb/pkg/config"
)

// Server is the HTTP façade in front of the in-memory database core: it
// translates JSON requests into database/search calls and renders their
// typed results (or *database.Error) through the standard envelope.
type Server struct {
	router      *gin.Engine
	db          *database.Database
	coordinator *search.Coordinator
	config      *config.Config
	httpServer  *http.Server
	log         *logging.Logger
}

// NewServer wires the router, middleware chain, and core handle. db is
// expected to already exist; the server never constructs its own.
func NewServer(db *database.Database, cfg *config.Config) *Server {
	log := logging.GetLogger("api")
	log.Info("initializing REST API server")

	if cfg.Logging.Level != "debug" && cfg.Logging.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogMiddleware(log))

	if cfg.RestAPI.CORS {
		log.Debug("enabling CORS")
		corsConfig := cors.Config{
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
			ExposeHeaders: []string{"Content-Length", "Retry-After"},
			MaxAge:        12 * time.Hour,
		}
		switch {
		case len(cfg.RestAPI.AllowOrigins) > 0:
			corsConfig.AllowOrigins = cfg.RestAPI.AllowOrigins
		case cfg.RestAPI.APIKey != "":
			corsConfig.AllowOrigins = []string{
				"http://localhost:*", "http://127.0.0.1:*",
				"https://localhost:*", "https://127.0.0.1:*",
			}
			corsConfig.AllowWildcard = true
		default:
			corsConfig.AllowAllOrigins = true
		}
		router.Use(cors.New(corsConfig))
	}

	authLevel := ParseAuthLevel(cfg.RestAPI.AuthLevel)
	if authLevel != AuthNone {
		log.Info("API key authentication enabled", "level", authLevel)
	}
	router.Use(APIKeyAuthMiddleware(authLevel, cfg.RestAPI.APIKey))

	if cfg.RateLimit.Enabled {
		log.Info("rate limiting enabled")
		router.Use(RateLimitMiddleware(ratelimit.NewLimiter(toRateLimitConfig(cfg.RateLimit))))
	}

	router.Use(MaxBodySizeMiddleware(DefaultBodyLimit))

	admin := NewAdminCredentials(cfg.Admin.User, cfg.Admin.Password, "coraldb-admin-salt")

	server := &Server{
		router:      router,
		db:          db,
		coordinator: search.NewCoordinator(db),
		config:      cfg,
		log:         log,
	}
	server.setupRoutes(admin)
	return server
}

func toRateLimitConfig(c config.RateLimitConfig) *ratelimit.Config {
	rlCfg := &ratelimit.Config{
		Enabled: c.Enabled,
		Global: ratelimit.LimitConfig{
			RequestsPerSecond: c.Global.RequestsPerSecond,
			BurstSize:         c.Global.BurstSize,
		},
	}
	for _, tool := range c.Tools {
		rlCfg.Tools = append(rlCfg.Tools, ratelimit.ToolLimit{
			Name:              tool.Name,
			RequestsPerSecond: tool.RequestsPerSecond,
			BurstSize:         tool.BurstSize,
		})
	}
	return rlCfg
}

// requestLogMiddleware logs every request with method, path, status, and
// duration, per §6.4.
func requestLogMiddleware(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogRequest(c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "duration_ms", time.Since(start).Milliseconds())
	}
}

func (s *Server) setupRoutes(admin AdminCredentials) {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.healthHandler)

		v1.POST("/table/create", s.createTable)
		v1.POST("/table/drop", AdminBasicAuthMiddleware(admin), s.dropTable)
		v1.GET("/table/list", s.listTables)
		v1.GET("/table/:name/stats", s.tableStats)

		v1.POST("/insert", s.insertRows)
		v1.POST("/search", s.search)
		v1.POST("/get", s.getRows)
		v1.POST("/update", s.updateRow)
		v1.POST("/delete", s.deleteRows)

		v1.GET("/stats", s.databaseStats)
	}
}

// Start runs the HTTP server until it errors, enforcing MaxConnections via
// a wrapped listener. Blocks until the listener closes.
func (s *Server) Start() error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	s.log.Info("starting REST API server", "address", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// StartWithContext runs the server until ctx is cancelled or the server
// errors, then drains in-flight requests within shutdownTimeout.
func (s *Server) StartWithContext(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("starting REST API server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) listen() (net.Listener, error) {
	addr := fmt.Sprintf("%s:%d", s.config.RestAPI.Host, s.config.RestAPI.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	s.httpServer = &http.Server{Handler: s.router}
	return newConnLimitListener(ln, s.config.RestAPI.MaxConnections), nil
}

// Stop gracefully stops the server, draining in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("stopping REST API server")
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.Error("server shutdown error", "error", err)
			return err
		}
		s.log.Info("REST API server stopped")
	}
	return nil
}

// Router returns the underlying Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// connLimitListener wraps a net.Listener to cap concurrently accepted
// connections at n, per §6.3's max-connections setting.
type connLimitListener struct {
	net.Listener
	sem chan struct{}
}

func newConnLimitListener(ln net.Listener, n int) net.Listener {
	if n <= 0 {
		n = 1000
	}
	return &connLimitListener{Listener: ln, sem: make(chan struct{}, n)}
}

func (l *connLimitListener) Accept() (net.Conn, error) {
	l.sem <- struct{}{}
	conn, err := l.Listener.Accept()
	if err != nil {
		<-l.sem
		return nil, err
	}
	return &releaseOnCloseConn{Conn: conn, release: func() {
		select {
		case <-l.sem:
		default:
		}
	}}, nil
}

type releaseOnCloseConn struct {
	net.Conn
	once    sync.Once
	release func()
}

func (c *releaseOnCloseConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(c.release)
	return err
}
