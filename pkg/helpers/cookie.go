package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieAccess   = "access_token"
	CookieRefresh  = "refresh_token"
	CookieDevice   = "device_id"
	HeaderDeviceID = "X-Device-ID"

	// DeviceTTL is how long a browser keeps its device id.
	DeviceTTL = 365 * 24 * time.Hour
)

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

func (m *Manager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieAccess, access, maxAgeFrom(aexp), "/", m.Domain, m.Secure, true)
	c.SetCookie(CookieRefresh, refresh, maxAgeFrom(rexp), "/", m.Domain, m.Secure, true)
}

// Clear drops the token pair. The device id stays: it names the session,
// not the account.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieAccess, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(CookieRefresh, "", -1, "/", m.Domain, m.Secure, true)
}

// SetDeviceID stores the long-lived device identifier cookie.
func (m *Manager) SetDeviceID(c *gin.Context, deviceID string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieDevice, deviceID, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

// DeviceID returns the device of the request from the X-Device-ID header or
// the device cookie. When neither holds a valid UUID a new one is issued and
// set as a cookie.
func (m *Manager) DeviceID(c *gin.Context) (id string, issued bool) {
	if v := strings.TrimSpace(c.GetHeader(HeaderDeviceID)); isUUID(v) {
		return v, false
	}
	if v, err := c.Cookie(CookieDevice); err == nil && isUUID(v) {
		return v, false
	}
	id = uuid.NewString()
	m.SetDeviceID(c, id, time.Now().Add(DeviceTTL))
	return id, true
}

// AccessToken reads the bearer token or, failing that, the access cookie.
func AccessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	v, _ := c.Cookie(CookieAccess)
	return v
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return s != "" && err == nil
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
