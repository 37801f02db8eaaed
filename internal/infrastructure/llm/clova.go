package llm

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"storybook-api/internal/config"
)

const clovaSystemPrompt = "6–8세 한국어 아동용 동화 작가"

// clovaTextPaths 按优先级排列的候选响应结构
// 该服务的响应结构随账号/端点变化，顺序不可调整
var clovaTextPaths = []string{
	"choices.0.message.content",
	"output_text",
	"result.message.content",
}

// ErrClovaEndpointMissing 未配置 Clova 端点
var ErrClovaEndpointMissing = errors.New("clova endpoint not configured")

// ClovaAdapter HyperCLOVA X 宽容解析适配器
type ClovaAdapter struct {
	endpoint    string
	apiKey      string
	apigwKeyID  string
	apigwKey    string
	model       string
	maxTokens   int
	temperature float64
	opts        Options
}

// NewClovaAdapter 创建 Clova 适配器
func NewClovaAdapter(cfg config.ProviderConfig, opts Options) Adapter {
	endpoint := strings.TrimSpace(orDefault(cfg.Endpoint, cfg.BaseURL))
	model := strings.TrimSpace(cfg.Model)
	if model == "" && endpoint != "" {
		model = path.Base(endpoint)
	}
	return &ClovaAdapter{
		endpoint:    endpoint,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		apigwKeyID:  strings.TrimSpace(cfg.APIGWKeyID),
		apigwKey:    strings.TrimSpace(cfg.APIGWKey),
		model:       orDefault(model, "default"),
		maxTokens:   maxTokensOf(cfg.MaxTokens),
		temperature: temperatureOf(cfg.Temperature),
		opts:        opts,
	}
}

func (a *ClovaAdapter) Name() string  { return "clova" }
func (a *ClovaAdapter) Model() string { return a.model }

// BuildRequest 构建 chat-completions 请求，只发送已配置的鉴权头
func (a *ClovaAdapter) BuildRequest(prompt string) (*OutboundRequest, error) {
	if a.endpoint == "" {
		return nil, ErrClovaEndpointMissing
	}

	header := http.Header{}
	if a.apigwKeyID != "" {
		header.Set("X-NCP-APIGW-API-KEY-ID", a.apigwKeyID)
	}
	if a.apigwKey != "" {
		header.Set("X-NCP-APIGW-API-KEY", a.apigwKey)
	}
	if a.apiKey != "" {
		header.Set("X-NCP-CLOVASTUDIO-API-KEY", a.apiKey)
		header.Set("Authorization", "Bearer "+a.apiKey)
	}
	header.Set("X-NCP-CLOVASTUDIO-REQUEST-ID", uuid.NewString())

	return &OutboundRequest{
		Method: http.MethodPost,
		URL:    a.endpoint,
		Header: header,
		Body: map[string]any{
			"messages": []chatMessage{
				{Role: "system", Content: clovaSystemPrompt},
				{Role: "user", Content: prompt},
			},
			"topP":        0.8,
			"temperature": a.temperature,
			"maxTokens":   a.maxTokens,
		},
	}, nil
}

// ParseResponse 依次尝试候选结构，取第一个非空值；都没有时退回原始响应体
// 空响应体返回空串，由上层归一化为 empty_story
func (a *ClovaAdapter) ParseResponse(status int, body []byte) (string, error) {
	if err := checkStatus(a.Name(), status, body, a.opts.excerptLimit()); err != nil {
		return "", err
	}
	return tolerantText(body), nil
}

func tolerantText(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" || !gjson.Valid(raw) {
		return raw
	}
	for _, p := range clovaTextPaths {
		if text := strings.TrimSpace(stringAt(body, p)); text != "" {
			return text
		}
	}
	return raw
}
