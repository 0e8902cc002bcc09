package session

import (
	"encoding/base64"
	"strings"

	"github.com/xxxsen/occlient/apierr"
)

const (
	webdavPath = "remote.php/webdav"
)

// Session holds the connection settings and the values cached by the
// capability and current user refresh calls. It is not safe for concurrent
// mutation.
type Session struct {
	baseURL      string
	webdavURL    string
	authHeader   string
	version      string
	capabilities Capabilities
	currentUser  *User
}

func New() *Session {
	return &Session{}
}

// SetInstance stores the server url, the webdav root is derived from it.
func (s *Session) SetInstance(instance string) {
	instance = strings.TrimSpace(instance)
	if len(instance) == 0 {
		s.baseURL = ""
		s.webdavURL = ""
		return
	}
	if !strings.HasSuffix(instance, "/") {
		instance += "/"
	}
	s.baseURL = instance
	s.webdavURL = instance + webdavPath
}

func (s *Session) SetAuthorization(header string) {
	s.authHeader = header
}

func (s *Session) BaseURL() string {
	return s.baseURL
}

func (s *Session) WebdavURL() string {
	return s.webdavURL
}

func (s *Session) AuthHeader() string {
	return s.authHeader
}

// Validate reports the configuration error that blocks any request.
func (s *Session) Validate() error {
	if len(s.baseURL) == 0 {
		return apierr.NewConfig("please specify a server URL first")
	}
	if len(s.authHeader) == 0 {
		return apierr.NewConfig("please specify an authorization first")
	}
	return nil
}

func (s *Session) GetVersion() string {
	return s.version
}

func (s *Session) GetCapabilities() Capabilities {
	return s.capabilities
}

func (s *Session) GetCurrentUser() *User {
	return s.currentUser
}

func (s *Session) SetVersion(v string) {
	s.version = v
}

func (s *Session) SetCapabilities(c Capabilities) {
	s.capabilities = c
}

func (s *Session) SetCurrentUser(u *User) {
	s.currentUser = u
}

func BasicAuth(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func BearerAuth(token string) string {
	return "Bearer " + token
}
