package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestDeviceID_IssuesOnce(t *testing.T) {
	m := NewCookie("localhost", false)

	c, w := testContext(httptest.NewRequest(http.MethodGet, "/", nil))
	id, issued := m.DeviceID(c)
	assert.True(t, issued)
	assert.NoError(t, uuid.Validate(id))
	assert.Contains(t, w.Header().Get("Set-Cookie"), CookieDevice+"="+id)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieDevice, Value: id})
	c, _ = testContext(req)
	again, issued := m.DeviceID(c)
	assert.False(t, issued)
	assert.Equal(t, id, again)
}

func TestDeviceID_HeaderWinsAndGarbageIsReplaced(t *testing.T) {
	m := NewCookie("localhost", false)
	hdr := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderDeviceID, hdr)
	req.AddCookie(&http.Cookie{Name: CookieDevice, Value: uuid.NewString()})
	c, _ := testContext(req)
	id, _ := m.DeviceID(c)
	assert.Equal(t, hdr, id)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieDevice, Value: "../../etc"})
	c, _ = testContext(req)
	id, issued := m.DeviceID(c)
	assert.True(t, issued)
	assert.NotEqual(t, "../../etc", id)
}

func TestAccessToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	c, _ := testContext(req)
	assert.Equal(t, "abc.def", AccessToken(c))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccess, Value: "from-cookie"})
	c, _ = testContext(req)
	assert.Equal(t, "from-cookie", AccessToken(c))
}
