package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storybook-api/internal/infrastructure/persistence/redis"
	"storybook-api/internal/interfaces/http/dto"
	apperrors "storybook-api/pkg/errors"
	"storybook-api/pkg/logger"
	"storybook-api/pkg/metrics"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond int
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP 对 /api/* 请求限流
// 未启用或没有限流器时直接放行；限流器故障时放行
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api/") {
			c.Next()
			return
		}

		key := redis.BuildRateLimitKey(c.ClientIP(), routeLabel(c))
		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.RequestsPerSecond, time.Second)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimitRejected.Inc()
			dto.Abort(c, apperrors.New(apperrors.CodeRateLimited, "rate limit exceeded"))
			return
		}

		c.Next()
	}
}
