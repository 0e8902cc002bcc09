package ocs

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCapabilitiesXML = `
<version>
 <major>10</major>
 <minor>0</minor>
 <micro>3</micro>
 <string>10.0.3</string>
 <edition>Community</edition>
</version>
<capabilities>
 <core>
  <pollinterval>60</pollinterval>
  <webdav-root>remote.php/webdav</webdav-root>
 </core>
 <files_sharing>
  <api_enabled>1</api_enabled>
  <public>
   <enabled>1</enabled>
  </public>
 </files_sharing>
</capabilities>`

func TestUpdateCapabilities(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ocs/v1.php/cloud/capabilities", r.URL.Path)
		_, _ = io.WriteString(w, ocsXML("100", "", testCapabilitiesXML))
	})
	caps, err := c.UpdateCapabilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.3-Community", sess.GetVersion())
	assert.Equal(t, "remote.php/webdav", caps.String("core", "webdav-root"))
	assert.True(t, sess.GetCapabilities().Bool("files_sharing", "public", "enabled"))
}

func TestUpdateCurrentUser(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ocs/v1.php/cloud/user", r.URL.Path)
		_, _ = io.WriteString(w, `{"ocs":{"meta":{"status":"ok","statuscode":100,"message":""},"data":{"id":"admin","display-name":"Admin","email":"admin@example.com"}}}`)
	})
	u, err := c.UpdateCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", u.ID)
	assert.Equal(t, "Admin", sess.GetCurrentUser().DisplayName)
	assert.Equal(t, "admin@example.com", sess.GetCurrentUser().Email)
}

func TestUpdateCurrentUserFailure(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, ocsXML("997", "Unauthorised", ""))
	})
	_, err := c.UpdateCurrentUser(context.Background())
	assert.Error(t, err)
	assert.Nil(t, sess.GetCurrentUser())
}
