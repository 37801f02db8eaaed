package llm

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"storybook-api/internal/config"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiDefaultModel   = "gemini-1.5-flash"
)

// GeminiAdapter generateContent 协议
type GeminiAdapter struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	opts        Options
}

// NewGeminiAdapter 创建 Gemini 适配器
func NewGeminiAdapter(cfg config.ProviderConfig, opts Options) Adapter {
	return &GeminiAdapter{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     strings.TrimRight(orDefault(cfg.BaseURL, geminiDefaultBaseURL), "/"),
		model:       orDefault(cfg.Model, geminiDefaultModel),
		maxTokens:   maxTokensOf(cfg.MaxTokens),
		temperature: temperatureOf(cfg.Temperature),
		opts:        opts,
	}
}

func (a *GeminiAdapter) Name() string  { return "gemini" }
func (a *GeminiAdapter) Model() string { return a.model }

// BuildRequest 构建 generateContent 请求
// 密钥放在 x-goog-api-key 头而不是查询串里，避免传输错误信息中带出密钥
func (a *GeminiAdapter) BuildRequest(prompt string) (*OutboundRequest, error) {
	header := http.Header{}
	header.Set("x-goog-api-key", a.apiKey)

	return &OutboundRequest{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/v1beta/models/%s:generateContent", a.baseURL, url.PathEscape(a.model)),
		Header: header,
		Body: map[string]any{
			"contents": []map[string]any{{
				"role":  "user",
				"parts": []map[string]any{{"text": prompt}},
			}},
			"generationConfig": map[string]any{
				"temperature":     a.temperature,
				"maxOutputTokens": a.maxTokens,
			},
		},
	}, nil
}

// ParseResponse 取 candidates[0].content.parts[0].text
func (a *GeminiAdapter) ParseResponse(status int, body []byte) (string, error) {
	if err := checkStatus(a.Name(), status, body, a.opts.excerptLimit()); err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", malformed(a.Name(), body, a.opts.excerptLimit())
	}
	return stringAt(body, "candidates.0.content.parts.0.text"), nil
}
