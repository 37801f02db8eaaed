package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"storybook-api/internal/config"
	apperrors "storybook-api/pkg/errors"
)

// Factory 根据服务配置创建适配器
type Factory func(cfg config.ProviderConfig, opts Options) Adapter

// Registry 服务标识到适配器工厂的映射
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry 注册内置的三个服务
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("openai", NewOpenAIAdapter)
	r.Register("gemini", NewGeminiAdapter)
	r.Register("clova", NewClovaAdapter)
	return r
}

// Register 注册工厂，同名覆盖
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[NormalizeName(name)] = f
}

// Names 已注册的服务标识（有序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve 按网关配置选出适配器，未知标识返回 unknown_provider
func (r *Registry) Resolve(cfg config.GatewayConfig) (Adapter, error) {
	name := NormalizeName(cfg.Provider)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeUnknownProvider, "provider not configured")
	}

	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.New(apperrors.CodeUnknownProvider,
			fmt.Sprintf("unknown provider %q (supported: %s)", name, strings.Join(r.Names(), ", ")))
	}

	return f(cfg.Providers[name], Options{ExcerptLimit: cfg.ExcerptLimit}), nil
}

// NormalizeName 标识不区分大小写
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
