package ocs

import (
	"context"
	"net/http"
	"net/url"
)

type Quota struct {
	Free     int64   `json:"free"`
	Used     int64   `json:"used"`
	Total    int64   `json:"total"`
	Relative float64 `json:"relative"`
}

// UserInfo is the provisioning api view of an account.
type UserInfo struct {
	Enabled     bool   `json:"enabled"`
	Email       string `json:"email"`
	DisplayName string `json:"displayname"`
	Quota       Quota  `json:"quota"`
}

func userAction(name string) string {
	return "users/" + url.PathEscape(name)
}

// GetUser reads the account name through the provisioning api.
func (c *Client) GetUser(ctx context.Context, name string) (*UserInfo, error) {
	rsp, err := c.Request(ctx, http.MethodGet, ServiceCloud, userAction(name), nil)
	if err != nil {
		return nil, err
	}
	u := &UserInfo{}
	if err := rsp.Decode(u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUserAttribute changes one attribute (email, quota, display, password)
// of account name. A server with the provisioning api disabled answers 999,
// which is reported as a dedicated error.
func (c *Client) SetUserAttribute(ctx context.Context, name string, key string, value string) error {
	rsp, err := c.Request(ctx, http.MethodPut, ServiceCloud, userAction(name), map[string]string{
		"key":   key,
		"value": value,
	}, WithAcceptedCodes(StatusOK, StatusProvisioningDisable))
	if err != nil {
		return err
	}
	return CheckProvisioning(rsp)
}
