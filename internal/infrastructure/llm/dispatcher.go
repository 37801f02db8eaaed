package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultMaxResponseBytes 单次响应体读取上限
const DefaultMaxResponseBytes int64 = 4 << 20

// State 单次出站调用的状态
type State string

const (
	StatePending    State = "PENDING"
	StateDispatched State = "DISPATCHED"
	StateCompleted  State = "COMPLETED"
	StateTimedOut   State = "TIMED_OUT"
	StateFailed     State = "FAILED"
)

// Result 一次调度的结果
// 只有 COMPLETED 才携带状态码与响应体
type Result struct {
	State      State
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
	Err        error
}

// Dispatcher 在绝对截止时间内执行出站请求
// 截止时间覆盖连接、发送与读取响应体全过程，到期后底层请求被取消
type Dispatcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// DispatcherOption 调度器选项
type DispatcherOption func(*Dispatcher)

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(c *http.Client) DispatcherOption {
	return func(d *Dispatcher) {
		if c != nil {
			d.client = c
		}
	}
}

// WithMaxResponseBytes 设置响应体读取上限
func WithMaxResponseBytes(n int64) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// NewDispatcher 创建调度器
func NewDispatcher(timeout time.Duration, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout:  timeout,
		maxBytes: DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Timeout 配置的截止时长
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// Dispatch 构建并发送请求，返回终态结果
func (d *Dispatcher) Dispatch(ctx context.Context, adapter Adapter, prompt string) *Result {
	start := time.Now()
	res := &Result{State: StatePending}
	finish := func(state State, err error) *Result {
		res.State = state
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	out, err := adapter.BuildRequest(prompt)
	if err != nil {
		return finish(StateFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := out.NewHTTPRequest(ctx)
	if err != nil {
		return finish(StateFailed, err)
	}

	res.State = StateDispatched
	resp, err := d.client.Do(req)
	if err != nil {
		return finish(d.classify(ctx), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes))
	if err != nil {
		return finish(d.classify(ctx), err)
	}

	res.StatusCode = resp.StatusCode
	res.Body = body
	return finish(StateCompleted, nil)
}

// classify 截止时间到期归为超时，其余归为失败
func (d *Dispatcher) classify(ctx context.Context) State {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return StateTimedOut
	}
	return StateFailed
}

// DescribeError 去掉 URL 后的传输错误描述
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Op + ": " + ue.Err.Error()
	}
	return err.Error()
}
