package ocs

import (
	"context"
	"net/http"

	"github.com/xxxsen/occlient/session"
)

type versionInfo struct {
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Micro   int    `json:"micro"`
	String  string `json:"string"`
	Edition string `json:"edition"`
}

type capabilitiesData struct {
	Version      versionInfo            `json:"version"`
	Capabilities map[string]interface{} `json:"capabilities"`
}

// UpdateCapabilities fetches cloud/capabilities and caches the capability
// tree and the "<version>-<edition>" string in the session.
func (c *Client) UpdateCapabilities(ctx context.Context) (session.Capabilities, error) {
	rsp, err := c.Request(ctx, http.MethodGet, ServiceCloud, "capabilities", nil)
	if err != nil {
		return nil, err
	}
	data := &capabilitiesData{}
	if err := rsp.Decode(data); err != nil {
		return nil, err
	}
	caps := session.Capabilities(data.Capabilities)
	c.sess.SetCapabilities(caps)
	c.sess.SetVersion(data.Version.String + "-" + data.Version.Edition)
	return caps, nil
}

// UpdateCurrentUser fetches cloud/user and caches it in the session.
func (c *Client) UpdateCurrentUser(ctx context.Context) (*session.User, error) {
	rsp, err := c.Request(ctx, http.MethodGet, ServiceCloud, "user", nil)
	if err != nil {
		return nil, err
	}
	u := &session.User{}
	if err := rsp.Decode(u); err != nil {
		return nil, err
	}
	c.sess.SetCurrentUser(u)
	return u, nil
}
