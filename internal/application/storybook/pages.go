package storybook

import (
	"regexp"
	"strings"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n+`)

// Image 生成服务返回的插图引用
type Image struct {
	FilePath string `json:"file_path"`
}

// SplitParagraphs 按空行切分段落，丢弃空段
func SplitParagraphs(story string) []string {
	story = strings.TrimSpace(story)
	if story == "" {
		return nil
	}

	parts := paragraphBreak.Split(story, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ComposePages 第 i 段配第 i 张插图，缺失时用占位符
func ComposePages(paragraphs []string, images []Image) []Page {
	pages := make([]Page, len(paragraphs))
	for i, p := range paragraphs {
		illustration := PlaceholderIllustration
		if i < len(images) {
			if fp := strings.TrimSpace(images[i].FilePath); fp != "" {
				illustration = fp
			}
		}
		pages[i] = Page{Text: p, Illustration: illustration}
	}
	return pages
}
