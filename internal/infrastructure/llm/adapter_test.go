package llm

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-api/internal/config"
	apperrors "storybook-api/pkg/errors"
)

func bodyJSON(t *testing.T, out *OutboundRequest) map[string]any {
	t.Helper()
	b, err := json.Marshal(out.Body)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestOpenAIBuildRequest(t *testing.T) {
	a := NewOpenAIAdapter(config.ProviderConfig{APIKey: "sk-test", BaseURL: "http://upstream/v1/"}, Options{})

	out, err := a.BuildRequest("hello")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, out.Method)
	assert.Equal(t, "http://upstream/v1/chat/completions", out.URL)
	assert.Equal(t, "Bearer sk-test", out.Header.Get("Authorization"))

	body := bodyJSON(t, out)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 0.8, body["temperature"])
	assert.EqualValues(t, 1200, body["max_tokens"])

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "hello", msgs[1].(map[string]any)["content"])
}

func TestOpenAIParseResponse(t *testing.T) {
	a := NewOpenAIAdapter(config.ProviderConfig{}, Options{})

	text, err := a.ParseResponse(200, []byte(`{"choices":[{"message":{"content":"옛날 옛적에"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "옛날 옛적에", text)

	text, err = a.ParseResponse(200, []byte(`{"choices":[]}`))
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = a.ParseResponse(200, []byte(`not json`))
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrorCode("openai_failed"), appErr.Code)
}

func TestOpenAIParseResponseNon2xx(t *testing.T) {
	a := NewOpenAIAdapter(config.ProviderConfig{}, Options{ExcerptLimit: 10})

	_, err := a.ParseResponse(401, []byte(`{"error":{"message":"invalid api key provided"}}`))
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrorCode("openai_failed"), appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 401, se.Status)
	assert.Equal(t, `{"error":{`, se.Excerpt)
	assert.True(t, strings.HasPrefix(appErr.Detail, "openai_failed 401"))
}

func TestGeminiBuildRequest(t *testing.T) {
	a := NewGeminiAdapter(config.ProviderConfig{APIKey: "g-key", BaseURL: "http://gem"}, Options{})

	out, err := a.BuildRequest("prompt text")
	require.NoError(t, err)

	assert.Equal(t, "http://gem/v1beta/models/gemini-1.5-flash:generateContent", out.URL)
	assert.Equal(t, "g-key", out.Header.Get("x-goog-api-key"))
	assert.NotContains(t, out.URL, "g-key")

	body := bodyJSON(t, out)
	contents := body["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "prompt text", parts[0].(map[string]any)["text"])

	gen := body["generationConfig"].(map[string]any)
	assert.EqualValues(t, 0.8, gen["temperature"])
	assert.EqualValues(t, 1200, gen["maxOutputTokens"])
}

func TestGeminiParseResponse(t *testing.T) {
	a := NewGeminiAdapter(config.ProviderConfig{}, Options{})

	text, err := a.ParseResponse(200, []byte(`{"candidates":[{"content":{"parts":[{"text":"A\n\nB"}]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "A\n\nB", text)

	text, err = a.ParseResponse(200, []byte(`{"candidates":[]}`))
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = a.ParseResponse(503, []byte("overloaded"))
	assert.Equal(t, apperrors.ErrorCode("gemini_failed"), apperrors.AsAppError(err).Code)
}

func TestClovaBuildRequestHeaders(t *testing.T) {
	a := NewClovaAdapter(config.ProviderConfig{
		Endpoint:   "http://clova/v3/chat-completions/HCX-005",
		APIKey:     "studio-key",
		APIGWKeyID: "gw-id",
	}, Options{})

	assert.Equal(t, "HCX-005", a.Model())

	out, err := a.BuildRequest("p")
	require.NoError(t, err)

	assert.Equal(t, "http://clova/v3/chat-completions/HCX-005", out.URL)
	assert.Equal(t, "gw-id", out.Header.Get("X-NCP-APIGW-API-KEY-ID"))
	assert.Empty(t, out.Header.Get("X-NCP-APIGW-API-KEY"))
	assert.Equal(t, "studio-key", out.Header.Get("X-NCP-CLOVASTUDIO-API-KEY"))
	assert.NotEmpty(t, out.Header.Get("X-NCP-CLOVASTUDIO-REQUEST-ID"))

	body := bodyJSON(t, out)
	assert.EqualValues(t, 0.8, body["topP"])
	assert.EqualValues(t, 1200, body["maxTokens"])
}

func TestClovaBuildRequestWithoutEndpoint(t *testing.T) {
	a := NewClovaAdapter(config.ProviderConfig{}, Options{})
	_, err := a.BuildRequest("p")
	assert.ErrorIs(t, err, ErrClovaEndpointMissing)
}

func TestClovaParseResponseTolerantOrder(t *testing.T) {
	a := NewClovaAdapter(config.ProviderConfig{Endpoint: "http://clova"}, Options{})

	cases := []struct {
		name string
		body string
		want string
	}{
		{"choices first", `{"choices":[{"message":{"content":"C"}}],"output_text":"O","result":{"message":{"content":"R"}}}`, "C"},
		{"output_text second", `{"output_text":"O","result":{"message":{"content":"R"}}}`, "O"},
		{"result third", `{"result":{"message":{"content":"R"}}}`, "R"},
		{"empty candidates skipped", `{"choices":[{"message":{"content":"  "}}],"output_text":"O"}`, "O"},
		{"no shape uses raw json", `{"foo":"bar"}`, `{"foo":"bar"}`},
		{"non json uses raw text", "  그냥 텍스트  ", "그냥 텍스트"},
		{"empty body", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := a.ParseResponse(200, []byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, text)
		})
	}
}

func TestClovaParseResponseNon2xx(t *testing.T) {
	a := NewClovaAdapter(config.ProviderConfig{Endpoint: "http://clova"}, Options{})
	_, err := a.ParseResponse(500, []byte("boom"))
	assert.Equal(t, apperrors.ErrorCode("clova_failed"), apperrors.AsAppError(err).Code)
}
