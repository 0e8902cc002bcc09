package ocs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/occlient/apierr"
	"github.com/xxxsen/occlient/httpkit"
	"github.com/xxxsen/occlient/session"
)

func ocsXML(statuscode string, message string, data string) string {
	return `<?xml version="1.0"?>
<ocs>
 <meta>
  <status>ok</status>
  <statuscode>` + statuscode + `</statuscode>
  <message>` + message + `</message>
 </meta>
 <data>` + data + `</data>
</ocs>`
}

type capturedRequest struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	form   map[string][]string
}

func newTestClient(t *testing.T, h func(w http.ResponseWriter, r *http.Request)) (*Client, *session.Session) {
	srv := httptest.NewServer(http.HandlerFunc(h))
	t.Cleanup(srv.Close)
	sess := session.New()
	sess.SetInstance(srv.URL)
	sess.SetAuthorization(session.BasicAuth("admin", "admin"))
	hc := httpkit.New(httpkit.WithRetryPolicy(httpkit.RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}))
	return New(sess, hc), sess
}

func TestConfigErrorBeforeRequest(t *testing.T) {
	var hit int32
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hit, 1)
	})
	sess.SetAuthorization("")
	_, err := c.Request(context.Background(), http.MethodGet, ServiceCloud, "user", nil)
	assert.True(t, apierr.IsKind(err, apierr.KindConfig))

	sess.SetInstance("")
	sess.SetAuthorization("Bearer x")
	_, err = c.Request(context.Background(), http.MethodGet, ServiceCloud, "user", nil)
	assert.True(t, apierr.IsKind(err, apierr.KindConfig))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hit))
}

func TestRequestHeadersAndPath(t *testing.T) {
	got := &capturedRequest{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.Query()
		got.header = r.Header.Clone()
		_, _ = io.WriteString(w, ocsXML("100", "", `<id>admin</id>`))
	})
	rsp, err := c.Request(context.Background(), http.MethodGet, ServiceCloud, "apps?filter=enabled", nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/ocs/v1.php/cloud/apps", got.path)
	assert.Equal(t, "enabled", got.query["filter"][0])
	assert.Equal(t, "true", got.header.Get(HeaderOCSAPIRequest))
	assert.Equal(t, "Basic YWRtaW46YWRtaW4=", got.header.Get("Authorization"))
	assert.Equal(t, 100, rsp.Meta.StatusCode)
	assert.Equal(t, "ok", rsp.Meta.Status)
	assert.Equal(t, map[string]interface{}{"id": "admin"}, rsp.Data())

	_, err = c.Request(context.Background(), http.MethodGet, "", "config", nil)
	require.NoError(t, err)
	assert.Equal(t, "/ocs/v1.php/config", got.path)
}

func TestPutEncodesQuery(t *testing.T) {
	got := &capturedRequest{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.query = r.URL.Query()
		got.header = r.Header.Clone()
		_, _ = io.WriteString(w, ocsXML("100", "", ""))
	})
	_, err := c.Request(context.Background(), http.MethodPut, ServiceCloud, "users/alice", map[string]string{
		"key":   "email",
		"value": "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "email", got.query["key"][0])
	assert.Equal(t, "alice@example.com", got.query["value"][0])
	assert.Equal(t, "application/x-www-form-urlencoded", got.header.Get("Content-Type"))
}

func TestPostEncodesMultipart(t *testing.T) {
	got := &capturedRequest{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		got.form = r.MultipartForm.Value
		_, _ = io.WriteString(w, ocsXML("100", "", ""))
	})
	_, err := c.Request(context.Background(), http.MethodPost, ServiceShare, "shares", map[string]string{
		"path":      "/a.txt",
		"shareType": "3",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.txt"}, got.form["path"])
	assert.Equal(t, []string{"3"}, got.form["shareType"])
}

func TestStatusCheck(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		accepted   []int
		wantErr    bool
		wantMsg    string
		wantCode   int
		hasPayload bool
	}{
		{name: "ok", body: ocsXML("100", "", "")},
		{name: "failed with message", body: ocsXML("404", "user does not exist", ""), wantErr: true, wantMsg: "user does not exist", wantCode: 404},
		{name: "failed without message", body: ocsXML("997", "", ""), wantErr: true, wantCode: 997, hasPayload: true},
		{name: "custom accepted", body: ocsXML("102", "", ""), accepted: []int{100, 102}},
		{name: "default rejects 102", body: ocsXML("102", "exists", ""), wantErr: true, wantMsg: "exists", wantCode: 102},
		{name: "json ok", body: `{"ocs":{"meta":{"status":"ok","statuscode":100,"message":null},"data":{"id":"x"}}}`},
		{name: "json failed", body: `{"ocs":{"meta":{"status":"failure","statuscode":403,"message":"forbidden"},"data":[]}}`, wantErr: true, wantMsg: "forbidden", wantCode: 403},
		{name: "json message", body: `{"message":"Current user is not logged in"}`, wantErr: true, wantMsg: "Current user is not logged in"},
		{name: "no meta", body: `<?xml version="1.0"?><result>1</result>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			})
			var opts []RequestOption
			if len(tc.accepted) != 0 {
				opts = append(opts, WithAcceptedCodes(tc.accepted...))
			}
			_, err := c.Request(context.Background(), http.MethodGet, ServiceCloud, "user", nil, opts...)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			e, ok := apierr.AsError(err)
			require.True(t, ok)
			assert.Equal(t, apierr.KindStatus, e.Kind)
			assert.Equal(t, tc.wantMsg, e.Message)
			assert.Equal(t, tc.wantCode, e.StatusCode)
			assert.Equal(t, tc.hasPayload, e.HasPayload())
			if tc.hasPayload {
				tree := e.Payload.(map[string]interface{})
				code, ok := StatusCode(tree)
				assert.True(t, ok)
				assert.Equal(t, tc.wantCode, code)
			}
		})
	}
}

func TestInvalidBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html><body>oops")
	})
	_, err := c.Request(context.Background(), http.MethodGet, ServiceCloud, "user", nil)
	assert.True(t, apierr.IsKind(err, apierr.KindDecode))
	assert.Contains(t, err.Error(), "invalid response body: <html><body>oops")
}

func TestTransportError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	sess := session.New()
	sess.SetInstance("http://127.0.0.1:1")
	sess.SetAuthorization("Bearer x")
	c.sess = sess
	_, err := c.Request(context.Background(), http.MethodGet, ServiceCloud, "user", nil)
	assert.True(t, apierr.IsKind(err, apierr.KindTransport))
}

func TestCheckProvisioning(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, ocsXML("999", "", ""))
	})
	rsp, err := c.Request(context.Background(), http.MethodPut, ServiceCloud, "users/bob", nil, WithAcceptedCodes(StatusOK, StatusProvisioningDisable))
	require.NoError(t, err)
	err = CheckProvisioning(rsp)
	assert.EqualError(t, err, "status error, code:999, msg:Provisioning API has been disabled at your instance")
}
