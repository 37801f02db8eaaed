package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"storybook-api/internal/application/story"
)

// FlexInt 接受 JSON 数字或数字字符串（表单提交的值是字符串）
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}

	if n, err := strconv.Atoi(raw); err == nil {
		*f = FlexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return fmt.Errorf("length must be an integer, got %s", string(b))
	}
	*f = FlexInt(v)
	return nil
}

// MakeStoryRequest POST /api/story/make 请求体
// 字段均可省略，省略（或为 null）时使用缺省值
type MakeStoryRequest struct {
	Title   *string  `json:"title"`
	Outline *string  `json:"outline"`
	Age     *string  `json:"age"`
	Style   *string  `json:"style"`
	Length  *FlexInt `json:"length"`
	Moral   *bool    `json:"moral"`
}

// ParseMakeStoryRequest 解析请求体，空请求体等同于 {}
func ParseMakeStoryRequest(body []byte) (*MakeStoryRequest, error) {
	req := &MakeStoryRequest{}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ToStoryRequest 填充缺省值
func (r *MakeStoryRequest) ToStoryRequest() story.StoryRequest {
	out := story.NewStoryRequest()
	if r.Title != nil {
		out.Title = *r.Title
	}
	if r.Outline != nil {
		out.Outline = *r.Outline
	}
	if r.Age != nil {
		out.Age = *r.Age
	}
	if r.Style != nil {
		out.Style = *r.Style
	}
	if r.Length != nil {
		out.Length = int(*r.Length)
	}
	if r.Moral != nil {
		out.Moral = *r.Moral
	}
	return out
}

// MakeStoryResponse 生成成功响应
type MakeStoryResponse struct {
	Story string `json:"story"`
}
