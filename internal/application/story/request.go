// Package story 实现童话生成网关：构建提示词、调用生成服务、归一化结果
package story

// 请求字段缺省值
const (
	DefaultAge    = "6-8세"
	DefaultStyle  = "따뜻한"
	DefaultLength = 5
	DefaultMoral  = true
)

// StoryRequest 一次生成请求，构造后不可变
type StoryRequest struct {
	Title   string
	Outline string
	Age     string
	Style   string
	// Length 目标段落数
	Length int
	// Moral 是否要求结尾教训
	Moral bool
}

// NewStoryRequest 以缺省值构造请求
func NewStoryRequest() StoryRequest {
	return StoryRequest{
		Age:    DefaultAge,
		Style:  DefaultStyle,
		Length: DefaultLength,
		Moral:  DefaultMoral,
	}
}
