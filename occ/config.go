package occ

import (
	"net/http"

	"github.com/spf13/afero"
	"github.com/xxxsen/occlient/httpkit"
	"github.com/xxxsen/occlient/session"
)

type config struct {
	Instance   string
	Auth       string
	HTTPClient *http.Client
	Retry      *httpkit.RetryPolicy
	Fs         afero.Fs
	Thread     int
}

type Option func(*config)

func WithInstance(u string) Option {
	return func(c *config) {
		c.Instance = u
	}
}

func WithBasicAuth(user, password string) Option {
	return func(c *config) {
		c.Auth = session.BasicAuth(user, password)
	}
}

func WithBearerToken(token string) Option {
	return func(c *config) {
		c.Auth = session.BearerAuth(token)
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *config) {
		c.HTTPClient = h
	}
}

func WithRetryPolicy(p httpkit.RetryPolicy) Option {
	return func(c *config) {
		c.Retry = &p
	}
}

func WithLocalFs(fs afero.Fs) Option {
	return func(c *config) {
		c.Fs = fs
	}
}

// WithThread bounds the number of concurrent PUTs of UploadDirectory.
func WithThread(t int) Option {
	return func(c *config) {
		c.Thread = t
	}
}
