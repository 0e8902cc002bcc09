package httpkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"
)

var (
	defaultHttpClient = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			IdleConnTimeout:     20 * time.Second,
			MaxIdleConns:        5,
			MaxIdleConnsPerHost: 2,
		},
	}
)

// RetryPolicy controls how transient failures are retried. Every verb is
// retried the same way, including non idempotent ones.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64
}

var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  250 * time.Millisecond,
	MaxDelay:   2 * time.Second,
	Jitter:     0.25,
}

type Option func(c *Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

type Client struct {
	httpClient *http.Client
	policy     RetryPolicy
}

type Request struct {
	Method        string
	URL           string
	Query         url.Values
	Header        http.Header
	Body          io.Reader
	GetBody       func() (io.ReadCloser, error)
	ContentLength int64
	DisableRetry  bool
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: defaultHttpClient,
		policy:     DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy.MaxRetries < 0 {
		c.policy.MaxRetries = 0
	}
	if c.policy.BaseDelay <= 0 {
		c.policy.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	if c.policy.MaxDelay <= 0 {
		c.policy.MaxDelay = DefaultRetryPolicy.MaxDelay
	}
	return c
}

// Do sends the request, retrying transport failures and 408/429/5xx
// responses. Once the retry budget is spent the last response is returned
// as is, so callers can still interpret its body.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("request is nil")
	}
	if len(req.Method) == 0 {
		return nil, errors.New("http method is required")
	}
	if err := c.makeReplayable(req); err != nil {
		return nil, err
	}
	fullURL, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}
	reqid := uuid.NewString()
	bk := newBackoff(c.policy.BaseDelay, c.policy.MaxDelay, c.policy.Jitter)
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := c.prepareBody(req, attempt == 0)
		if err != nil {
			return nil, err
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
		if err != nil {
			return nil, err
		}
		for k, values := range req.Header {
			for _, v := range values {
				httpReq.Header.Add(k, v)
			}
		}
		httpReq.Header.Set(HeaderRequestID, reqid)
		if req.ContentLength > 0 {
			httpReq.ContentLength = req.ContentLength
		}
		rsp, err := c.httpClient.Do(httpReq)
		if !c.shouldRetry(ctx, req, attempt, rsp, err) {
			return rsp, err
		}
		delay := bk.forAttempt(attempt)
		logutil.GetLogger(ctx).Warn("request failed, wait retry",
			zap.String("method", req.Method), zap.String("url", fullURL), zap.String("request_id", reqid),
			zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Int("status", statusOf(rsp)), zap.Error(err))
		if rsp != nil {
			_ = rsp.Body.Close()
		}
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) makeReplayable(req *Request) error {
	if req.DisableRetry || req.GetBody != nil || req.Body == nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("read request body:%w", err)
	}
	req.Body = bytes.NewReader(data)
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

func (c *Client) prepareBody(req *Request, first bool) (io.Reader, error) {
	if first && req.Body != nil {
		body := req.Body
		req.Body = nil
		return body, nil
	}
	if req.GetBody != nil {
		return req.GetBody()
	}
	return nil, nil
}

func (c *Client) shouldRetry(ctx context.Context, req *Request, attempt int, rsp *http.Response, err error) bool {
	if req.DisableRetry || attempt >= c.policy.MaxRetries {
		return false
	}
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		return true
	}
	return IsRetryableStatus(rsp.StatusCode)
}

func IsRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		(code >= 500 && code <= 599)
}

func statusOf(rsp *http.Response) int {
	if rsp == nil {
		return 0
	}
	return rsp.StatusCode
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func buildURL(raw string, q url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url:%w", err)
	}
	if len(q) > 0 {
		merged := u.Query()
		for k, vs := range q {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

// ReadAllAndClose drains and closes rc.
func ReadAllAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}
