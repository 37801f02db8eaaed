// Package storyclient 调用童话生成接口并组装绘本
//
// 生成接口不可用时退回到确定性的离线内容，调用方总能拿到一本绘本。
package storyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storybook-api/internal/application/storybook"
	"storybook-api/pkg/logger"
)

const (
	makePath         = "/api/story/make"
	defaultAge       = "6-8세"
	defaultStyle     = "따뜻한"
	maxResponseBytes = 4 << 20
)

var (
	// ErrBusy 同一客户端已有生成请求在进行中
	ErrBusy = errors.New("storyclient: generation already in progress")
	// ErrMissingFields 必填字段为空
	ErrMissingFields = errors.New("storyclient: all fields are required")
)

// BookRequest 创建绘本的表单输入
type BookRequest struct {
	ChildInfo string
	Title     string
	Theme     string
	Keywords  []string
	PageCount int
	TTSModel  string
}

// Validate 所有字段都必须填写，关键词除外
func (r BookRequest) Validate() error {
	if strings.TrimSpace(r.ChildInfo) == "" ||
		strings.TrimSpace(r.Title) == "" ||
		strings.TrimSpace(r.Theme) == "" ||
		strings.TrimSpace(r.TTSModel) == "" ||
		r.PageCount <= 0 {
		return ErrMissingFields
	}
	return nil
}

// Outline 按 주인공/주제·테마/키워드/페이지 수 四行组织概要
func (r BookRequest) Outline() string {
	return fmt.Sprintf("주인공: %s\n주제/테마: %s\n키워드: %s\n페이지 수: %d",
		r.ChildInfo, r.Theme, strings.Join(r.Keywords, ", "), r.PageCount)
}

// Style 取第一个关键词，没有时用缺省风格
func (r BookRequest) Style() string {
	if len(r.Keywords) > 0 && strings.TrimSpace(r.Keywords[0]) != "" {
		return r.Keywords[0]
	}
	return defaultStyle
}

type makeRequest struct {
	Title   string `json:"title"`
	Outline string `json:"outline"`
	Age     string `json:"age"`
	Style   string `json:"style"`
	Length  string `json:"length"`
	Moral   bool   `json:"moral"`
}

type makeResponse struct {
	Story  string            `json:"story"`
	Images []storybook.Image `json:"images"`
}

// Client 童话生成客户端
type Client struct {
	baseURL  string
	http     *http.Client
	fallback *storybook.FallbackGenerator
	session  *storybook.Session
	now      func() time.Time
	busy     atomic.Bool
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSession 生成的绘本同时加入书库
func WithSession(s *storybook.Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithFallback 替换离线内容生成器
func WithFallback(g *storybook.FallbackGenerator) Option {
	return func(c *Client) {
		if g != nil {
			c.fallback = g
		}
	}
}

// New 创建客户端，baseURL 为空时请求同源路径
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		fallback: storybook.NewFallbackGenerator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MakeBook 生成一本绘本
// 接口返回非 2xx 或请求失败时使用离线内容，Source 标记来源
func (c *Client) MakeBook(ctx context.Context, req BookRequest) (storybook.Book, error) {
	if err := req.Validate(); err != nil {
		return storybook.Book{}, err
	}
	if !c.busy.CompareAndSwap(false, true) {
		return storybook.Book{}, ErrBusy
	}
	defer c.busy.Store(false)

	book := storybook.Book{
		Title:     req.Title,
		ChildInfo: req.ChildInfo,
		Theme:     req.Theme,
		Keywords:  append([]string(nil), req.Keywords...),
		PageCount: req.PageCount,
		TTSModel:  req.TTSModel,
		CreatedAt: c.now(),
	}

	pages, err := c.generate(ctx, req)
	if err != nil {
		logger.Warn(ctx, "story api unavailable, using offline content",
			"title", req.Title,
			"error", err.Error(),
		)
		book.Pages = c.fallback.Generate(req.ChildInfo, req.Theme, req.PageCount)
		book.Source = storybook.SourceFallback
	} else {
		book.Pages = pages
		book.Source = storybook.SourceAPI
	}

	if c.session != nil {
		book = c.session.AddBook(book)
	}
	return book, nil
}

func (c *Client) generate(ctx context.Context, req BookRequest) ([]storybook.Page, error) {
	payload, err := json.Marshal(makeRequest{
		Title:   req.Title,
		Outline: req.Outline(),
		Age:     defaultAge,
		Style:   req.Style(),
		Length:  strconv.Itoa(req.PageCount),
		Moral:   true,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+makePath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("story api status %d", resp.StatusCode)
	}

	var out makeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode story response: %w", err)
	}
	return storybook.ComposePages(storybook.SplitParagraphs(out.Story), out.Images), nil
}
