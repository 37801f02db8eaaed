package story

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"storybook-api/internal/application/storybook"
	"storybook-api/internal/config"
	"storybook-api/internal/infrastructure/llm"
	einoobs "storybook-api/internal/observability/eino"
	apperrors "storybook-api/pkg/errors"
	"storybook-api/pkg/logger"
	"storybook-api/pkg/metrics"
	"storybook-api/pkg/tracer"
)

// Gateway 童话生成网关
// 适配器在启动时解析一次，之后只读；解析失败时每次调用直接返回该错误
type Gateway struct {
	provider   string
	adapter    llm.Adapter
	resolveErr *apperrors.AppError
	dispatcher *llm.Dispatcher
	prompts    *PromptBuilder
}

// NewGateway 根据配置选出适配器并创建网关
func NewGateway(cfg config.GatewayConfig, registry *llm.Registry, dispatcher *llm.Dispatcher, prompts *PromptBuilder) *Gateway {
	g := &Gateway{
		provider:   llm.NormalizeName(cfg.Provider),
		dispatcher: dispatcher,
		prompts:    prompts,
	}
	adapter, err := registry.Resolve(cfg)
	if err != nil {
		g.resolveErr = apperrors.AsAppError(err)
		return g
	}
	g.adapter = adapter
	return g
}

// Provider 配置的服务标识
func (g *Gateway) Provider() string {
	return g.provider
}

// Ready 适配器是否解析成功
func (g *Gateway) Ready() error {
	if g.resolveErr != nil {
		return g.resolveErr
	}
	return nil
}

// Make 生成一篇童话，成功时文本非空且已去除首尾空白
func (g *Gateway) Make(ctx context.Context, req StoryRequest) (string, error) {
	if g.resolveErr != nil {
		ctx = logger.WithContext(ctx, logger.ProviderKey, g.provider)
		g.record(ctx, req, nil, g.resolveErr)
		return "", g.resolveErr
	}

	ctx, span := tracer.Start(ctx, "story.make")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", g.adapter.Name()),
		attribute.String("llm.model", g.adapter.Model()),
	)
	ctx = logger.WithContext(ctx, logger.ProviderKey, g.adapter.Name())
	ctx = einoobs.WithProvider(ctx, g.adapter.Name())

	prompt, err := g.prompts.Build(ctx, req)
	if err != nil {
		appErr := apperrors.Wrap(err, apperrors.CodePromptFailed, "failed to build prompt")
		tracer.Fail(span, appErr)
		g.record(ctx, req, nil, appErr)
		return "", appErr
	}

	res := g.dispatcher.Dispatch(ctx, g.adapter, prompt)
	metrics.LLMDispatchTotal.WithLabelValues(g.adapter.Name(), string(res.State)).Inc()
	metrics.LLMCallDuration.WithLabelValues(g.adapter.Name(), g.adapter.Model()).Observe(res.Elapsed.Seconds())
	span.SetAttributes(attribute.String("llm.dispatch_state", string(res.State)))

	story, appErr := g.outcome(res)
	if appErr != nil {
		tracer.Fail(span, appErr)
		g.record(ctx, req, res, appErr)
		return "", appErr
	}

	g.record(ctx, req, res, nil)
	metrics.StoryParagraphCount.WithLabelValues(g.adapter.Name()).Observe(float64(len(storybook.SplitParagraphs(story))))
	return story, nil
}

// outcome 将调度结果映射为文本或分类错误
func (g *Gateway) outcome(res *llm.Result) (string, *apperrors.AppError) {
	switch res.State {
	case llm.StateTimedOut:
		return "", apperrors.Wrap(res.Err, apperrors.CodeTimeout,
			fmt.Sprintf("no response within %s", g.dispatcher.Timeout()))
	case llm.StateFailed:
		return "", apperrors.Wrap(res.Err, apperrors.CodeTransportFailed, llm.DescribeError(res.Err))
	case llm.StateCompleted:
	default:
		return "", apperrors.New(apperrors.CodeInternalError, "dispatch ended in state "+string(res.State))
	}

	text, err := g.adapter.ParseResponse(res.StatusCode, res.Body)
	if err != nil {
		return "", apperrors.AsAppError(err)
	}
	story, err := Normalize(text)
	if err != nil {
		return "", apperrors.AsAppError(err)
	}
	return story, nil
}

// record 记录日志与业务指标
func (g *Gateway) record(ctx context.Context, req StoryRequest, res *llm.Result, appErr *apperrors.AppError) {
	result := "success"
	if appErr != nil {
		result = string(appErr.Code)
	}
	metrics.StoryGenerationTotal.WithLabelValues(g.provider, result).Inc()

	args := []any{
		"title", apperrors.Truncate(req.Title, 50),
		"length", req.Length,
	}
	if res != nil {
		args = append(args,
			"state", string(res.State),
			"status", res.StatusCode,
			"elapsed_ms", res.Elapsed.Milliseconds(),
		)
	}

	if appErr == nil {
		logger.Info(ctx, "story generated", args...)
		return
	}

	args = append(args, "kind", string(appErr.Code))
	var se *llm.StatusError
	if errors.As(appErr, &se) {
		args = append(args, "upstream_status", se.Status, "excerpt", se.Excerpt)
	}
	logger.Error(ctx, "story generation failed", appErr, args...)
}
