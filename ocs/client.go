package ocs

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/occlient/apierr"
	"github.com/xxxsen/occlient/httpkit"
	"github.com/xxxsen/occlient/session"
	"go.uber.org/zap"
)

type Client struct {
	sess *session.Session
	hc   *httpkit.Client
}

func New(sess *session.Session, hc *httpkit.Client) *Client {
	return &Client{sess: sess, hc: hc}
}

type requestConfig struct {
	accepted []int
}

type RequestOption func(c *requestConfig)

// WithAcceptedCodes replaces the default accepted status set {100}.
func WithAcceptedCodes(codes ...int) RequestOption {
	return func(c *requestConfig) {
		c.accepted = codes
	}
}

func (c *Client) buildURL(service, action string) string {
	slash := ""
	if len(service) != 0 {
		slash = "/"
	}
	return c.sess.BaseURL() + BasePath + service + slash + action
}

// Request performs one OCS call. PUT and DELETE send data as urlencoded
// query parameters, POST sends it as multipart form fields and GET sends no
// body at all.
func (c *Client) Request(ctx context.Context, method, service, action string, data map[string]string, opts ...RequestOption) (*Response, error) {
	if err := c.sess.Validate(); err != nil {
		return nil, err
	}
	rc := &requestConfig{}
	for _, opt := range opts {
		opt(rc)
	}
	req := &httpkit.Request{
		Method: method,
		URL:    c.buildURL(service, action),
		Header: http.Header{},
	}
	req.Header.Set("Authorization", c.sess.AuthHeader())
	req.Header.Set(HeaderOCSAPIRequest, "true")
	switch method {
	case http.MethodPut, http.MethodDelete:
		if len(data) != 0 {
			q := make(url.Values, len(data))
			for k, v := range data {
				q.Set(k, v)
			}
			req.Query = q
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case http.MethodPost:
		if len(data) != 0 {
			body, contentType, err := buildMultipart(data)
			if err != nil {
				return nil, fmt.Errorf("build form body:%w", err)
			}
			req.Body = bytes.NewReader(body)
			req.Header.Set("Content-Type", contentType)
		}
	}
	logger := logutil.GetLogger(ctx).With(zap.String("method", method), zap.String("url", req.URL))
	rsp, err := c.hc.Do(ctx, req)
	if err != nil {
		logger.Error("ocs request failed", zap.Error(err))
		return nil, apierr.NewTransport(err)
	}
	body, err := httpkit.ReadAllAndClose(rsp.Body)
	if err != nil {
		return nil, apierr.NewTransport(fmt.Errorf("read body:%w", err))
	}
	logger.Debug("ocs request finish", zap.Int("http_status", rsp.StatusCode), zap.Int("body_size", len(body)))
	return interpret(rsp.StatusCode, body, rc.accepted)
}

func buildMultipart(data map[string]string) ([]byte, string, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, k := range keys {
		if err := writer.WriteField(k, data[k]); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}
