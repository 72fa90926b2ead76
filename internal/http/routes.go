package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"todo_api/internal/config"
	"todo_api/internal/http/handlers"
	"todo_api/internal/http/middleware"
	"todo_api/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// NewEngine creates a gin engine with the middleware every route shares
func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	// outside Recovery so recovered panics are counted as 500s
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery(!cfg.IsProduction()))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	return r
}

// RegisterRoutes mounts the todo API, operational endpoints and the front-end.
// hub and rdb may be nil.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, todos handlers.TodoService, hub *ws.Hub, rdb *redis.Client) {
	hcfg := handlers.HandlerConfig{
		Environment:  cfg.Env,
		Version:      cfg.Version,
		ExposeErrors: !cfg.IsProduction(),
	}
	if hub != nil {
		hcfg.ClientCount = hub.ClientCount
	}
	h := handlers.NewHandler(todos, hcfg)

	checks := map[string]handlers.CheckFunc{}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	healthHandler := handlers.NewHealthHandler(cfg.Env, cfg.Version, checks)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/status", h.Status)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter gin.HandlerFunc
	if cfg.RateLimitEnabled {
		limiter = middleware.RateLimit(rdb, cfg.RateLimit, cfg.RateLimitWindow)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	if limiter != nil {
		v1.Use(limiter)
	}
	registerAPIRoutes(v1, h)

	// Legacy /api routes used by the bundled front-end
	api := r.Group("/api")
	if limiter != nil {
		api.Use(limiter)
	}
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h)

	// Live todo changes
	if hub != nil {
		r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigins))
	}

	registerFrontend(r, cfg.StaticDir)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	api.GET("/todos", h.ListTodos)
	api.POST("/todos", h.CreateTodo)
	api.DELETE("/todos", h.DeleteCompletedTodos)
	api.GET("/todos/:id", h.GetTodo)
	api.PUT("/todos/:id", h.UpdateTodo)
	api.DELETE("/todos/:id", h.DeleteTodo)

	api.GET("/status", h.Status)
}

// registerFrontend serves files from dir for unmatched GET requests,
// falling back to index.html for client side paths.
func registerFrontend(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if dir != "" && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				c.File(file)
				return
			}
			if !strings.HasPrefix(path, "/api/") {
				if _, err := os.Stat(index); err == nil {
					c.File(index)
					return
				}
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}
