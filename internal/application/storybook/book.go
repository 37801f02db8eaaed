// Package storybook 将生成的故事文本组织为可翻阅的绘本
package storybook

import "time"

// PlaceholderIllustration 没有插图时使用的占位符
const PlaceholderIllustration = "📖✨"

// Source 绘本内容来源
type Source string

const (
	SourceAPI      Source = "api"
	SourceFallback Source = "fallback"
)

// Page 绘本的一页
type Page struct {
	Text         string `json:"text" yaml:"text"`
	Illustration string `json:"illustration" yaml:"illustration"`
}

// Book 一本生成好的绘本
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ChildInfo string    `json:"childInfo"`
	Theme     string    `json:"theme"`
	Keywords  []string  `json:"keywords"`
	PageCount int       `json:"pageCount"`
	TTSModel  string    `json:"ttsModel,omitempty"`
	Pages     []Page    `json:"content"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}
