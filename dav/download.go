package dav

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/occlient/apierr"
	"github.com/xxxsen/occlient/httpkit"
	"go.uber.org/zap"
)

const (
	htmlDoctype  = "<!doctype html"
	doctypePeek  = 512
	errorPageTag = `<li class="error">`
)

// Download streams url into localFile. The file is truncated before the
// request is sent so an unwritable destination fails without any network
// traffic. HTML pages are never written; they mean the file is missing or
// the session is not logged in.
func (c *Client) Download(ctx context.Context, url string, localFile string) error {
	if err := c.sess.Validate(); err != nil {
		return err
	}
	if err := c.truncate(localFile); err != nil {
		return err
	}
	req := &httpkit.Request{
		Method: http.MethodGet,
		URL:    url,
		Header: http.Header{},
	}
	req.Header.Set("Authorization", c.sess.AuthHeader())
	req.Header.Set("Content-Type", "application/octet-stream")
	start := time.Now()
	rsp, err := c.hc.Do(ctx, req)
	if err != nil {
		return apierr.NewTransport(err)
	}
	defer rsp.Body.Close()
	reader := bufio.NewReaderSize(rsp.Body, doctypePeek)
	if rsp.StatusCode != http.StatusOK || looksLikeHTML(reader) {
		raw, err := io.ReadAll(reader)
		if err != nil {
			return apierr.NewTransport(fmt.Errorf("read body:%w", err))
		}
		return downloadError(rsp.StatusCode, raw)
	}
	f, err := c.c.fs.OpenFile(localFile, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return apierr.NewFilesystem(err)
	}
	sz, err := io.Copy(f, reader)
	if err != nil {
		_ = f.Close()
		return apierr.NewTransport(fmt.Errorf("copy stream to file:%w", err))
	}
	if err := f.Close(); err != nil {
		return apierr.NewFilesystem(err)
	}
	logutil.GetLogger(ctx).Debug("download finish", zap.String("url", url), zap.String("local", localFile),
		zap.String("size", humanize.IBytes(uint64(sz))), zap.Duration("cost", time.Since(start)))
	return nil
}

// DownloadFile saves the remote file p into localFile.
func (c *Client) DownloadFile(ctx context.Context, p string, localFile string) error {
	return c.Download(ctx, c.resourceURL(p), localFile)
}

func (c *Client) truncate(localFile string) error {
	f, err := c.c.fs.OpenFile(localFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return apierr.NewFilesystem(err)
	}
	if err := f.Close(); err != nil {
		return apierr.NewFilesystem(err)
	}
	return nil
}

func looksLikeHTML(r *bufio.Reader) bool {
	head, _ := r.Peek(doctypePeek)
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		head = head[:idx]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte(htmlDoctype))
}

func downloadError(code int, raw []byte) error {
	e := &apierr.Error{Kind: apierr.KindStatus, HTTPStatus: code}
	msg, tree, err := ParseError(raw)
	if err == nil {
		e.Message = msg
		if len(msg) == 0 {
			e.Payload = tree
		}
		return e
	}
	if bytes.Contains(raw, []byte(errorPageTag)) {
		e.Message = "specified file/folder could not be located"
		return e
	}
	e.Message = "Current user is not logged in"
	return e
}
