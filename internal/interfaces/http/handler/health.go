package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storybook-api/internal/infrastructure/persistence/redis"
)

// ProviderStatus 生成服务解析状态
type ProviderStatus interface {
	Provider() string
	Ready() error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version  string
	provider ProviderStatus
	redis    *redis.Client
}

// NewHealthHandler 创建健康检查处理器，redisClient 可为空
func NewHealthHandler(version string, provider ProviderStatus, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		version:  version,
		provider: provider,
		redis:    redisClient,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Name      string `json:"name,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready 就绪检查接口
// 生成服务未解析成功时不就绪；Redis 仅在启用时检查
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"provider": {Status: "missing"},
		"redis":    {Status: "disabled"},
	}
	ready := true

	if h.provider == nil {
		ready = false
	} else {
		checks["provider"].Name = h.provider.Provider()
		if err := h.provider.Ready(); err != nil {
			checks["provider"].Status = "error"
			checks["provider"].Error = err.Error()
			ready = false
		} else {
			checks["provider"].Status = "ok"
		}
	}

	if h.redis != nil {
		start := time.Now()
		err := h.redis.HealthCheck(ctx)
		checks["redis"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["redis"].Status = "error"
			checks["redis"].Error = err.Error()
			ready = false
		} else {
			checks["redis"].Status = "ok"
		}
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
