package story

import (
	"context"
	"fmt"

	einoobs "storybook-api/internal/observability/eino"
	workflowprompt "storybook-api/internal/workflow/prompt"
)

// PromptBuilder 将请求渲染为提示词
// 相同输入总是得到逐字节相同的输出
type PromptBuilder struct {
	prompts *workflowprompt.Registry
}

func NewPromptBuilder(prompts *workflowprompt.Registry) *PromptBuilder {
	if prompts == nil {
		prompts = workflowprompt.NewRegistry()
	}
	return &PromptBuilder{prompts: prompts}
}

// Build 按固定顺序填充标题、概要、风格、篇幅、教训，缺失字段渲染为空
func (b *PromptBuilder) Build(ctx context.Context, req StoryRequest) (string, error) {
	tpl, err := b.prompts.ChatTemplate(workflowprompt.PromptStoryMakeV1)
	if err != nil {
		return "", err
	}

	moral := "선택"
	if req.Moral {
		moral = "포함"
	}

	ctx = einoobs.WithPrompt(ctx, string(workflowprompt.PromptStoryMakeV1))
	msgs, err := tpl.Format(ctx, map[string]any{
		"age":     req.Age,
		"title":   req.Title,
		"outline": req.Outline,
		"style":   req.Style,
		"length":  req.Length,
		"moral":   moral,
	})
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	if len(msgs) == 0 || msgs[len(msgs)-1] == nil {
		return "", fmt.Errorf("format prompt: no message")
	}
	return msgs[len(msgs)-1].Content, nil
}
