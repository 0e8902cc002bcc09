// Package occ is the high level ownCloud client. It glues the session, the
// OCS and WebDAV protocol clients and the local filesystem together.
package occ

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/occlient/apierr"
	"github.com/xxxsen/occlient/dav"
	"github.com/xxxsen/occlient/httpkit"
	"github.com/xxxsen/occlient/localfs"
	"github.com/xxxsen/occlient/ocs"
	"github.com/xxxsen/occlient/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	HeaderMTime = "X-OC-Mtime"
)

type Client struct {
	c    *config
	sess *session.Session
	ocs  *ocs.Client
	dav  *dav.Client
}

func New(opts ...Option) *Client {
	c := &config{
		Fs:     afero.NewOsFs(),
		Thread: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Thread <= 0 {
		c.Thread = 1
	}
	hopts := []httpkit.Option{httpkit.WithHTTPClient(c.HTTPClient)}
	if c.Retry != nil {
		hopts = append(hopts, httpkit.WithRetryPolicy(*c.Retry))
	}
	hc := httpkit.New(hopts...)
	sess := session.New()
	sess.SetInstance(c.Instance)
	sess.SetAuthorization(c.Auth)
	return &Client{
		c:    c,
		sess: sess,
		ocs:  ocs.New(sess, hc),
		dav:  dav.New(sess, hc, dav.WithFs(c.Fs)),
	}
}

func (c *Client) Session() *session.Session {
	return c.sess
}

func (c *Client) OCS() *ocs.Client {
	return c.ocs
}

func (c *Client) DAV() *dav.Client {
	return c.dav
}

// Login checks the credentials by refreshing the capabilities and the
// current user, both are cached in the session afterwards.
func (c *Client) Login(ctx context.Context) (*session.User, error) {
	if _, err := c.ocs.UpdateCapabilities(ctx); err != nil {
		logutil.GetLogger(ctx).Error("update capabilities failed", zap.Error(err))
		return nil, err
	}
	u, err := c.ocs.UpdateCurrentUser(ctx)
	if err != nil {
		logutil.GetLogger(ctx).Error("update current user failed", zap.Error(err))
		return nil, err
	}
	logutil.GetLogger(ctx).Debug("login succ", zap.String("user", u.ID), zap.String("version", c.sess.GetVersion()))
	return u, nil
}

// IsLocalDir stats p on the client's local filesystem.
func (c *Client) IsLocalDir(p string) (bool, error) {
	return localfs.IsDir(c.c.Fs, p)
}

func (c *Client) GetVersion() string {
	return c.sess.GetVersion()
}

func (c *Client) GetCapabilities() session.Capabilities {
	return c.sess.GetCapabilities()
}

func (c *Client) GetCurrentUser() *session.User {
	return c.sess.GetCurrentUser()
}

func (c *Client) GetUser(ctx context.Context, name string) (*ocs.UserInfo, error) {
	return c.ocs.GetUser(ctx, name)
}

func (c *Client) SetUserAttribute(ctx context.Context, name, key, value string) error {
	return c.ocs.SetUserAttribute(ctx, name, key, value)
}

// List returns the entries of p, p itself first. Depth defaults to "1".
func (c *Client) List(ctx context.Context, p string, depth string) ([]*dav.FileInfo, error) {
	return c.dav.List(ctx, p, depth)
}

// FileInfo returns the entry of p only.
func (c *Client) FileInfo(ctx context.Context, p string) (*dav.FileInfo, error) {
	ents, err := c.dav.List(ctx, p, "0")
	if err != nil {
		return nil, err
	}
	if len(ents) == 0 {
		return nil, apierr.NewDecode("empty propfind result, path:"+p, nil)
	}
	return ents[0], nil
}

func (c *Client) Mkdir(ctx context.Context, p string) error {
	return c.dav.Mkdir(ctx, p)
}

func (c *Client) Delete(ctx context.Context, p string) error {
	return c.dav.Delete(ctx, p)
}

func (c *Client) Move(ctx context.Context, src, dst string) error {
	return c.dav.Move(ctx, src, dst, true)
}

func (c *Client) Copy(ctx context.Context, src, dst string) error {
	return c.dav.Copy(ctx, src, dst, true)
}

func (c *Client) GetFileContents(ctx context.Context, p string) ([]byte, error) {
	return c.dav.GetContents(ctx, p)
}

func (c *Client) DownloadFile(ctx context.Context, p string, localFile string) error {
	return c.dav.DownloadFile(ctx, p, localFile)
}

// UploadFile puts localFile at p and keeps its modification time on the
// server side.
func (c *Client) UploadFile(ctx context.Context, p string, localFile string) error {
	mtime, err := localfs.MTime(c.c.Fs, localFile)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set(HeaderMTime, strconv.FormatInt(mtime.Unix(), 10))
	start := time.Now()
	if err := c.dav.PutFile(ctx, p, localFile, header); err != nil {
		logutil.GetLogger(ctx).Error("upload file failed", zap.String("local", localFile), zap.String("remote", p), zap.Error(err))
		return err
	}
	sz, _ := localfs.Size(c.c.Fs, localFile)
	logutil.GetLogger(ctx).Debug("upload file finish", zap.String("local", localFile), zap.String("remote", p),
		zap.String("size", humanize.IBytes(uint64(sz))), zap.Duration("cost", time.Since(start)))
	return nil
}

// UploadDirectory mirrors the local tree localDir under targetPath. Each
// directory level is created first (an existing one is fine) and then its
// files are uploaded, at most Thread at a time. The first error stops the
// upload.
func (c *Client) UploadDirectory(ctx context.Context, localDir string, targetPath string) error {
	groups, err := localfs.Walk(c.c.Fs, localDir, targetPath)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("start upload directory", zap.String("local", localDir),
		zap.String("target", targetPath), zap.Int("dir_cnt", len(groups)), zap.Int("thread", c.c.Thread))
	for _, g := range groups {
		if err := c.ensureDir(ctx, g.RemoteDir); err != nil {
			return err
		}
		eg, subctx := errgroup.WithContext(ctx)
		eg.SetLimit(c.c.Thread)
		for _, name := range g.Files {
			local := g.LocalFile(name)
			remote := g.RemoteFile(name)
			eg.Go(func() error {
				return c.UploadFile(subctx, remote, local)
			})
		}
		if err := eg.Wait(); err != nil {
			return fmt.Errorf("upload dir:%s failed, err:%w", g.LocalDir, err)
		}
	}
	return nil
}

func (c *Client) ensureDir(ctx context.Context, p string) error {
	err := c.dav.Mkdir(ctx, p)
	if err == nil {
		return nil
	}
	if e, ok := apierr.AsError(err); ok && e.HTTPStatus == http.StatusMethodNotAllowed {
		return nil
	}
	logutil.GetLogger(ctx).Error("create remote dir failed", zap.String("dir", p), zap.Error(err))
	return err
}
