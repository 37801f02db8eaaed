// Package config 提供配置加载和管理功能
package config

import (
	"strings"
	"time"
)

// DefaultStoryTimeout 生成调用的默认截止时间
const DefaultStoryTimeout = 15000 * time.Millisecond

// writeHeadroom 生成截止时间与 HTTP 写超时之间至少保留的余量，保证 504 能写回
const writeHeadroom = time.Second

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Story         StoryConfig         `yaml:"story" mapstructure:"story"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Proxy         ProxyConfig         `yaml:"proxy" mapstructure:"proxy"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// StoryConfig 童话生成网关配置
type StoryConfig struct {
	// Provider 选用的生成服务标识 (openai / gemini / clova)
	Provider string `yaml:"provider" mapstructure:"provider"`
	// TimeoutMs 单次调用的绝对截止时间（毫秒）
	TimeoutMs int `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	// ExcerptLimit 上游错误响应体摘录的最大字符数
	ExcerptLimit int `yaml:"excerpt_limit" mapstructure:"excerpt_limit"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// APIGW 网关密钥（Clova 部分账号需要）
	APIGWKeyID string `yaml:"apigw_key_id" mapstructure:"apigw_key_id"`
	APIGWKey   string `yaml:"apigw_key" mapstructure:"apigw_key"`
}

// ProxyConfig 通用 /api/* 透传配置
type ProxyConfig struct {
	UpstreamBase string        `yaml:"upstream_base" mapstructure:"upstream_base"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
// Port 为 0 时指标挂在主服务的 Path 上
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Port    int    `yaml:"port" mapstructure:"port"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// GatewayConfig 生成网关在进程生命周期内不可变的配置快照
type GatewayConfig struct {
	Provider     string
	Providers    map[string]ProviderConfig
	Timeout      time.Duration
	ExcerptLimit int
	// Clamped 配置的截止时间超出 HTTP 写超时，已被压缩
	Clamped bool
}

// Gateway 从根配置派生网关配置
func (c *Config) Gateway() GatewayConfig {
	timeout := time.Duration(c.Story.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = DefaultStoryTimeout
	}

	providers := make(map[string]ProviderConfig, len(c.LLM.Providers))
	for name, p := range c.LLM.Providers {
		providers[strings.ToLower(strings.TrimSpace(name))] = p
	}

	clamped := false
	if wt := c.Server.HTTP.WriteTimeout; wt > 0 && timeout > wt-writeHeadroom {
		timeout = max(wt-writeHeadroom, wt/2)
		clamped = true
	}

	excerpt := c.Story.ExcerptLimit
	if excerpt <= 0 {
		excerpt = 200
	}

	return GatewayConfig{
		Provider:     strings.ToLower(strings.TrimSpace(c.Story.Provider)),
		Providers:    providers,
		Timeout:      timeout,
		ExcerptLimit: excerpt,
		Clamped:      clamped,
	}
}
