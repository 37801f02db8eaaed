package wire

import (
	"context"

	"github.com/google/wire"

	"storybook-api/internal/application/story"
	"storybook-api/internal/config"
	"storybook-api/internal/infrastructure/llm"
	"storybook-api/internal/infrastructure/persistence/redis"
	"storybook-api/internal/interfaces/http/handler"
	"storybook-api/internal/interfaces/http/middleware"
	"storybook-api/internal/interfaces/http/router"
	workflowprompt "storybook-api/internal/workflow/prompt"
	"storybook-api/pkg/logger"
)

// GatewaySet 童话生成网关提供者集合
var GatewaySet = wire.NewSet(
	ProvideGatewayConfig,
	llm.DefaultRegistry,
	ProvideDispatcher,
	workflowprompt.NewRegistry,
	story.NewPromptBuilder,
	story.NewGateway,
)

// RedisSet Redis 提供者集合（未启用时为空）
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideRateLimiter,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	wire.Bind(new(handler.StoryMaker), new(*story.Gateway)),
	wire.Bind(new(handler.ProviderStatus), new(*story.Gateway)),
	ProvideProxyConfig,
	ProvideVersion,
	handler.NewStoryHandler,
	handler.NewProxyHandler,
	handler.NewHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// ProvideGatewayConfig 提供生成网关配置快照
func ProvideGatewayConfig(cfg *config.Config) config.GatewayConfig {
	return cfg.Gateway()
}

// ProvideDispatcher 提供带截止时间的调度器
func ProvideDispatcher(gw config.GatewayConfig) *llm.Dispatcher {
	return llm.NewDispatcher(gw.Timeout)
}

// ProvideProxyConfig 提供透传配置
func ProvideProxyConfig(cfg *config.Config) config.ProxyConfig {
	return cfg.Proxy
}

// ProvideVersion 提供服务版本号
func ProvideVersion(cfg *config.Config) string {
	return cfg.App.Version
}

// ProvideRedisClient 提供 Redis 客户端
// 未启用时返回 nil；启用但不可达时只告警，不阻塞启动
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, rate limiting disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimiter 提供限流器，没有 Redis 时返回 nil 接口
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}
