package eino

import (
	"context"
	"strings"
)

type ctxKey string

const (
	ctxKeyPrompt   ctxKey = "eino_prompt"
	ctxKeyProvider ctxKey = "eino_provider"
)

// WithPrompt 标记当前渲染的模板标识
func WithPrompt(ctx context.Context, prompt string) context.Context {
	return withValue(ctx, ctxKeyPrompt, prompt)
}

// WithProvider 标记当前选用的生成服务
func WithProvider(ctx context.Context, provider string) context.Context {
	return withValue(ctx, ctxKeyProvider, provider)
}

func PromptFromContext(ctx context.Context) string {
	return valueOr(ctx, ctxKeyPrompt)
}

func ProviderFromContext(ctx context.Context) string {
	return valueOr(ctx, ctxKeyProvider)
}

func withValue(ctx context.Context, key ctxKey, val string) context.Context {
	if ctx == nil {
		return nil
	}
	v := strings.TrimSpace(val)
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOr(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(key).(string)
	if !ok || s == "" {
		return "unknown"
	}
	return s
}
