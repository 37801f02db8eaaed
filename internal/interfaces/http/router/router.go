// Package router 提供 HTTP 路由配置
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storybook-api/internal/config"
	"storybook-api/internal/interfaces/http/dto"
	"storybook-api/internal/interfaces/http/handler"
	"storybook-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Story  *handler.StoryHandler
	Proxy  *handler.ProxyHandler
	Health *handler.HealthHandler
}

// Router HTTP 路由器
type Router struct {
	engine  *gin.Engine
	cfg     *config.Config
	h       Handlers
	limiter middleware.RateLimiter
}

// New 创建新的路由器，limiter 可为空
func New(cfg *config.Config, h Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:  gin.New(),
		cfg:     cfg,
		h:       h,
		limiter: limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.Audit(middleware.DefaultAuditSkipPaths...))
	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
	}, r.limiter))
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.h.Health.Health)
	r.engine.GET("/ready", r.h.Health.Ready)
	r.engine.GET("/live", r.h.Health.Live)

	// 指标端口为 0 时挂在主服务上
	m := r.cfg.Observability.Metrics
	if m.Enabled && m.Port == 0 {
		r.engine.GET(m.Path, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api")
	{
		api.POST("/story/make", r.h.Story.Make)
	}

	// 其余 /api/* 请求一律透传
	r.engine.NoRoute(func(c *gin.Context) {
		if r.h.Proxy != nil && r.h.Proxy.Matches(c.Request.URL.Path) {
			r.h.Proxy.Handle(c)
			return
		}
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found"})
	})
}
