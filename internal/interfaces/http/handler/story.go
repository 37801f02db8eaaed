// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storybook-api/internal/application/story"
	"storybook-api/internal/interfaces/http/dto"
)

// MaxStoryRequestBytes 生成请求体上限
const MaxStoryRequestBytes = 2 << 20

// StoryMaker 童话生成能力
type StoryMaker interface {
	Make(ctx context.Context, req story.StoryRequest) (string, error)
}

// StoryHandler 童话生成处理器
type StoryHandler struct {
	gateway StoryMaker
}

// NewStoryHandler 创建童话生成处理器
func NewStoryHandler(gateway StoryMaker) *StoryHandler {
	return &StoryHandler{gateway: gateway}
}

// Make 生成童话
// @Summary 生成童话
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.MakeStoryRequest false "生成参数"
// @Success 200 {object} dto.MakeStoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 504 {object} dto.ErrorResponse
// @Router /api/story/make [post]
func (h *StoryHandler) Make(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxStoryRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			dto.BadRequest(c, "request body too large")
			return
		}
		dto.BadRequest(c, "failed to read request body")
		return
	}

	req, err := dto.ParseMakeStoryRequest(body)
	if err != nil {
		dto.BadRequest(c, "malformed request body: "+err.Error())
		return
	}

	text, err := h.gateway.Make(c.Request.Context(), req.ToStoryRequest())
	if err != nil {
		dto.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MakeStoryResponse{Story: text})
}
