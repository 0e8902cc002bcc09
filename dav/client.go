package dav

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/afero"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/occlient/apierr"
	"github.com/xxxsen/occlient/httpkit"
	"github.com/xxxsen/occlient/session"
	"go.uber.org/zap"
)

const (
	DefaultMount = "webdav"

	MethodPropfind = "PROPFIND"
	MethodMkcol    = "MKCOL"
	MethodMove     = "MOVE"
	MethodCopy     = "COPY"
)

type config struct {
	fs    afero.Fs
	mount string
}

type Option func(c *config)

// WithFs sets the local filesystem used for uploads and downloads.
func WithFs(fs afero.Fs) Option {
	return func(c *config) {
		c.fs = fs
	}
}

// WithMount sets the href segment that marks the webdav root.
func WithMount(m string) Option {
	return func(c *config) {
		c.mount = m
	}
}

type Client struct {
	sess *session.Session
	hc   *httpkit.Client
	c    *config
}

func New(sess *session.Session, hc *httpkit.Client, opts ...Option) *Client {
	c := &config{
		fs:    afero.NewOsFs(),
		mount: DefaultMount,
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Client{sess: sess, hc: hc, c: c}
}

// Result is the outcome of a successful DAV call. Entries is only filled for
// 200 and 207 replies.
type Result struct {
	StatusCode int
	Entries    []*FileInfo
}

func (c *Client) resourceURL(p string) string {
	return c.sess.WebdavURL() + EncodePath(NormalizePath(p))
}

// Request issues one DAV call against the webdav root. 200/207 replies are
// parsed as multistatus, 201/204 count as success with no body, anything else
// is turned into an error from the DAV error body.
func (c *Client) Request(ctx context.Context, method, p string, header http.Header, body io.Reader) (*Result, error) {
	return c.do(ctx, &httpkit.Request{Method: method, Header: header.Clone(), Body: body}, p)
}

func (c *Client) do(ctx context.Context, req *httpkit.Request, p string) (*Result, error) {
	if err := c.sess.Validate(); err != nil {
		return nil, err
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.URL = c.resourceURL(p)
	req.Header.Set("Authorization", c.sess.AuthHeader())
	logger := logutil.GetLogger(ctx).With(zap.String("method", req.Method), zap.String("url", req.URL))
	rsp, err := c.hc.Do(ctx, req)
	if err != nil {
		logger.Error("dav request failed", zap.Error(err))
		return nil, apierr.NewTransport(err)
	}
	raw, err := httpkit.ReadAllAndClose(rsp.Body)
	if err != nil {
		return nil, apierr.NewTransport(fmt.Errorf("read body:%w", err))
	}
	logger.Debug("dav request finish", zap.Int("http_status", rsp.StatusCode), zap.Int("body_size", len(raw)))
	switch rsp.StatusCode {
	case http.StatusOK, http.StatusMultiStatus:
		ents, err := ParseMultistatus(raw, c.c.mount)
		if err != nil {
			return nil, err
		}
		return &Result{StatusCode: rsp.StatusCode, Entries: ents}, nil
	case http.StatusCreated, http.StatusNoContent:
		return &Result{StatusCode: rsp.StatusCode}, nil
	}
	return nil, statusError(rsp.StatusCode, raw)
}

func statusError(code int, raw []byte) *apierr.Error {
	e := &apierr.Error{Kind: apierr.KindStatus, HTTPStatus: code}
	msg, tree, err := ParseError(raw)
	if err != nil {
		e.Message = strings.TrimSpace(string(raw))
		return e
	}
	e.Message = msg
	if len(msg) == 0 {
		e.Payload = tree
	}
	return e
}

// List runs a PROPFIND on p. The first entry is p itself.
func (c *Client) List(ctx context.Context, p string, depth string) ([]*FileInfo, error) {
	if len(depth) == 0 {
		depth = "1"
	}
	res, err := c.Request(ctx, MethodPropfind, p, http.Header{"Depth": []string{depth}}, nil)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

func (c *Client) Mkdir(ctx context.Context, p string) error {
	_, err := c.Request(ctx, MethodMkcol, p, nil, nil)
	return err
}

func (c *Client) Delete(ctx context.Context, p string) error {
	_, err := c.Request(ctx, http.MethodDelete, p, nil, nil)
	return err
}

func (c *Client) Move(ctx context.Context, src, dst string, overwrite bool) error {
	return c.MoveCopy(ctx, src, dst, MethodMove, overwrite)
}

func (c *Client) Copy(ctx context.Context, src, dst string, overwrite bool) error {
	return c.MoveCopy(ctx, src, dst, MethodCopy, overwrite)
}

// MoveCopy sends MOVE or COPY with the destination given as a full webdav url.
func (c *Client) MoveCopy(ctx context.Context, src, dst string, method string, overwrite bool) error {
	if method != MethodMove && method != MethodCopy {
		return apierr.NewConfig("please specify a valid method")
	}
	ow := "F"
	if overwrite {
		ow = "T"
	}
	header := http.Header{}
	header.Set("Destination", c.resourceURL(dst))
	header.Set("Overwrite", ow)
	_, err := c.Request(ctx, method, src, header, nil)
	return err
}

// PutFile uploads localPath to p. The file is reopened for every retry.
func (c *Client) PutFile(ctx context.Context, p string, localPath string, header http.Header) error {
	info, err := c.c.fs.Stat(localPath)
	if err != nil {
		return apierr.NewFilesystem(err)
	}
	if info.IsDir() {
		return apierr.NewFilesystem(fmt.Errorf("%s is a directory", localPath))
	}
	req := &httpkit.Request{
		Method:        http.MethodPut,
		Header:        header.Clone(),
		ContentLength: info.Size(),
		GetBody: func() (io.ReadCloser, error) {
			return c.c.fs.Open(localPath)
		},
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if len(req.Header.Get("Content-Type")) == 0 {
		req.Header.Set("Content-Type", httpkit.DetermineMimeType(localPath))
	}
	if _, err := c.do(ctx, req, p); err != nil {
		if e, ok := apierr.AsError(err); ok && e.Kind == apierr.KindStatus && len(e.Message) == 0 && e.Payload == nil {
			e.Message = "not allowed"
		}
		return err
	}
	return nil
}

// Get fetches url with the session credentials and returns the raw body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.sess.Validate(); err != nil {
		return nil, err
	}
	req := &httpkit.Request{
		Method: http.MethodGet,
		URL:    url,
		Header: http.Header{},
	}
	req.Header.Set("Authorization", c.sess.AuthHeader())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rsp, err := c.hc.Do(ctx, req)
	if err != nil {
		return nil, apierr.NewTransport(err)
	}
	raw, err := httpkit.ReadAllAndClose(rsp.Body)
	if err != nil {
		return nil, apierr.NewTransport(fmt.Errorf("read body:%w", err))
	}
	if rsp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(rsp.StatusCode, raw)
	}
	return raw, nil
}

// GetContents returns the content of the remote file p.
func (c *Client) GetContents(ctx context.Context, p string) ([]byte, error) {
	return c.Get(ctx, c.resourceURL(p))
}

func (c *Client) ResourceURL(p string) string {
	return c.resourceURL(p)
}
