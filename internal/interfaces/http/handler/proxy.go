package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storybook-api/internal/config"
	"storybook-api/internal/interfaces/http/dto"
	apperrors "storybook-api/pkg/errors"
	"storybook-api/pkg/logger"
	"storybook-api/pkg/metrics"
)

// ProxyPrefix 透传路径前缀
const ProxyPrefix = "/api"

// forwardedHeaders 允许转发到上游的请求头
var forwardedHeaders = []string{"Content-Type", "Authorization", "Accept"}

// ProxyHandler 将 /api/* 请求透传到上游服务
type ProxyHandler struct {
	target  *url.URL
	timeout time.Duration
	proxy   *httputil.ReverseProxy
}

// NewProxyHandler 创建透传处理器，未配置上游时所有请求返回 proxy_failed
func NewProxyHandler(cfg config.ProxyConfig) (*ProxyHandler, error) {
	h := &ProxyHandler{timeout: cfg.Timeout}

	base := strings.TrimSpace(cfg.UpstreamBase)
	if base == "" {
		return h, nil
	}
	target, err := url.Parse(base)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid proxy upstream %q", base)
	}

	h.target = target
	h.proxy = &httputil.ReverseProxy{
		Rewrite:        h.rewrite,
		ModifyResponse: relayResponse,
		ErrorHandler:   proxyError,
		Transport:      otelhttp.NewTransport(http.DefaultTransport),
	}
	return h, nil
}

// Matches 是否属于透传路径
func (h *ProxyHandler) Matches(path string) bool {
	return path == ProxyPrefix || strings.HasPrefix(path, ProxyPrefix+"/")
}

// Handle 透传请求
func (h *ProxyHandler) Handle(c *gin.Context) {
	defer func() {
		metrics.ProxyRequestsTotal.WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}()

	if h.proxy == nil {
		dto.Fail(c, apperrors.New(apperrors.CodeProxyFailed, "proxy upstream not configured"))
		return
	}

	req := c.Request
	if h.timeout > 0 {
		ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}
	h.proxy.ServeHTTP(c.Writer, req)
}

// rewrite 去掉 /api 前缀后拼到上游地址，只保留白名单请求头
func (h *ProxyHandler) rewrite(pr *httputil.ProxyRequest) {
	rest := strings.TrimPrefix(pr.In.URL.Path, ProxyPrefix)

	out := pr.Out
	out.URL.Scheme = h.target.Scheme
	out.URL.Host = h.target.Host
	out.URL.Path = joinPath(h.target.Path, rest)
	out.URL.RawPath = ""
	out.URL.RawQuery = pr.In.URL.RawQuery
	out.Host = ""

	header := http.Header{}
	for _, k := range forwardedHeaders {
		if v := pr.In.Header.Get(k); v != "" {
			header.Set(k, v)
		}
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}
	out.Header = header
}

// relayResponse 只回传状态码与 Content-Type
func relayResponse(resp *http.Response) error {
	ct := resp.Header.Get("Content-Type")
	resp.Header = http.Header{}
	if ct != "" {
		resp.Header.Set("Content-Type", ct)
	}
	return nil
}

func proxyError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error(r.Context(), "proxy request failed", err,
		"method", r.Method,
		"path", r.URL.Path,
	)

	appErr := apperrors.Wrap(err, apperrors.CodeProxyFailed, describeProxyError(err))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(appErr, ""))
}

// describeProxyError 对外描述，不带上游地址
func describeProxyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "upstream timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op != "" {
		return "upstream unreachable: " + opErr.Op
	}
	return "upstream unreachable"
}

func joinPath(base, rest string) string {
	base = strings.TrimRight(base, "/")
	if rest == "" {
		rest = "/"
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return base + rest
}
