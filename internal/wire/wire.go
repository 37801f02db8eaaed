//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"storybook-api/internal/config"
	"storybook-api/internal/interfaces/http/router"
)

// InitializeApp 初始化应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		GatewaySet,
		RedisSet,
		RouterSet,
	)
	return nil, nil, nil
}
