// Package llm 提供童话生成服务的适配器、注册表与调度器
//
// 每个适配器只负责两件事：把提示词映射为对应服务的出站请求，
// 以及从原始响应体中抽取纯文本。网络调用统一由 Dispatcher 执行。
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "storybook-api/pkg/errors"
)

const (
	defaultTemperature = 0.8
	defaultMaxTokens   = 1200
)

// OutboundRequest 出站请求描述
type OutboundRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   any
}

// NewHTTPRequest 将描述转换为绑定 ctx 的 HTTP 请求
func (o *OutboundRequest) NewHTTPRequest(ctx context.Context) (*http.Request, error) {
	method := o.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if o.Body != nil {
		b, err := json.Marshal(o.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range o.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if o.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Adapter 单个生成服务的线协议映射，构造后只读，可被并发请求共享
type Adapter interface {
	// Name 服务标识，同时用于错误分类前缀
	Name() string
	// Model 实际使用的模型名
	Model() string
	// BuildRequest 将提示词映射为出站请求
	BuildRequest(prompt string) (*OutboundRequest, error)
	// ParseResponse 从状态码与原始响应体中抽取文本
	ParseResponse(status int, body []byte) (string, error)
}

// Options 所有适配器共享的构造选项
type Options struct {
	// ExcerptLimit 错误响应体摘录的最大字符数
	ExcerptLimit int
}

func (o Options) excerptLimit() int {
	if o.ExcerptLimit <= 0 {
		return 200
	}
	return o.ExcerptLimit
}

// StatusError 上游返回非 2xx 状态
type StatusError struct {
	Provider string
	Status   int
	Excerpt  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s_failed %d %s", e.Provider, e.Status, e.Excerpt)
}

// checkStatus 非 2xx 时返回带摘录的分类错误
func checkStatus(provider string, status int, body []byte, limit int) error {
	if status >= 200 && status < 300 {
		return nil
	}
	se := &StatusError{
		Provider: provider,
		Status:   status,
		Excerpt:  excerpt(body, limit),
	}
	return apperrors.Wrap(se, apperrors.ProviderFailed(provider), se.Error())
}

// malformed 2xx 响应体不是合法 JSON
func malformed(provider string, body []byte, limit int) error {
	return apperrors.New(apperrors.ProviderFailed(provider),
		fmt.Sprintf("%s_failed malformed response: %s", provider, excerpt(body, limit)))
}

func excerpt(body []byte, limit int) string {
	return apperrors.Truncate(strings.TrimSpace(string(body)), limit)
}

func orDefault(s, def string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return def
}

func temperatureOf(v float64) float64 {
	if v <= 0 {
		return defaultTemperature
	}
	return v
}

func maxTokensOf(v int) int {
	if v <= 0 {
		return defaultMaxTokens
	}
	return v
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
