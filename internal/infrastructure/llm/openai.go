package llm

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"storybook-api/internal/config"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o-mini"
	openAISystemPrompt   = "You are a kind children’s story writer who writes in Korean for ages 6–8."
)

// OpenAIAdapter Chat Completions 协议
type OpenAIAdapter struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	opts        Options
}

// NewOpenAIAdapter 创建 OpenAI 适配器
func NewOpenAIAdapter(cfg config.ProviderConfig, opts Options) Adapter {
	return &OpenAIAdapter{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     strings.TrimRight(orDefault(cfg.BaseURL, openAIDefaultBaseURL), "/"),
		model:       orDefault(cfg.Model, openAIDefaultModel),
		maxTokens:   maxTokensOf(cfg.MaxTokens),
		temperature: temperatureOf(cfg.Temperature),
		opts:        opts,
	}
}

func (a *OpenAIAdapter) Name() string  { return "openai" }
func (a *OpenAIAdapter) Model() string { return a.model }

// BuildRequest 构建 /chat/completions 请求
func (a *OpenAIAdapter) BuildRequest(prompt string) (*OutboundRequest, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+a.apiKey)

	return &OutboundRequest{
		Method: http.MethodPost,
		URL:    a.baseURL + "/chat/completions",
		Header: header,
		Body: map[string]any{
			"model":       a.model,
			"temperature": a.temperature,
			"messages": []chatMessage{
				{Role: "system", Content: openAISystemPrompt},
				{Role: "user", Content: prompt},
			},
			"max_tokens": a.maxTokens,
		},
	}, nil
}

// ParseResponse 取 choices[0].message.content
func (a *OpenAIAdapter) ParseResponse(status int, body []byte) (string, error) {
	if err := checkStatus(a.Name(), status, body, a.opts.excerptLimit()); err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", malformed(a.Name(), body, a.opts.excerptLimit())
	}
	return stringAt(body, "choices.0.message.content"), nil
}

// stringAt 返回路径上的字符串值，缺失或非字符串时返回空串
func stringAt(body []byte, path string) string {
	r := gjson.GetBytes(body, path)
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
