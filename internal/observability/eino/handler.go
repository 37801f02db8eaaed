package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/prompt"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storybook-api/pkg/logger"
	"storybook-api/pkg/metrics"
	"storybook-api/pkg/tracer"
)

// startTimeKey 在 OnStart 写入开始时间，OnEnd/OnError 据此计算耗时
type startTimeKey struct{}

// newPromptCallbackHandler 模板渲染回调：记录次数、耗时与 Span
func newPromptCallbackHandler() *cbtemplate.PromptCallbackHandler {
	return &cbtemplate.PromptCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *prompt.CallbackInput) context.Context {
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

			attrs := []attribute.KeyValue{
				attribute.String("prompt.id", PromptFromContext(ctx)),
				attribute.String("llm.provider", ProviderFromContext(ctx)),
			}
			if input != nil {
				attrs = append(attrs, attribute.Int("prompt.variables", len(input.Variables)))
			}
			if info != nil {
				attrs = append(attrs, attribute.String("eino.type", info.Type))
			}

			ctx, _ = tracer.Start(ctx, "prompt.render", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			id := PromptFromContext(ctx)
			metrics.PromptRenderTotal.WithLabelValues(id, "success").Inc()
			observe(ctx, id)

			span := trace.SpanFromContext(ctx)
			if output != nil {
				span.SetAttributes(attribute.Int("prompt.messages", len(output.Result)))
			}
			span.End()
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			id := PromptFromContext(ctx)
			metrics.PromptRenderTotal.WithLabelValues(id, "error").Inc()
			observe(ctx, id)
			logger.Warn(ctx, "prompt render failed", "prompt", id, "error", err.Error())

			span := trace.SpanFromContext(ctx)
			tracer.Fail(span, err)
			span.End()
			return ctx
		},
	}
}

func observe(ctx context.Context, id string) {
	if d := elapsedSeconds(ctx); d > 0 {
		metrics.PromptRenderDuration.WithLabelValues(id).Observe(d)
	}
}

// elapsedSeconds 距 OnStart 的耗时，取不到开始时间返回 0
func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}
