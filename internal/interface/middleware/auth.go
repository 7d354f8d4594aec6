package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/response"
)

// Gin context keys set by the middleware below.
const (
	CtxSession  = "session"
	CtxDeviceID = "device_id"
	CtxUserID   = "userID"
	CtxUserType = "userType"
)

// Device binds the request to the session of its device, opening one on
// first contact, and counts the request as activity.
func Device(sessions *application.SessionManager, cookies *helpers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := cookies.DeviceID(c)
		s, err := sessions.Get(c.Request.Context(), id)
		if errors.Is(err, application.ErrTooManySessions) {
			c.Header("Retry-After", "60")
			response.Error[any](c, http.StatusServiceUnavailable, "server busy", err.Error())
			return
		}
		if err != nil {
			response.Error[any](c, http.StatusServiceUnavailable, "session unavailable", err.Error())
			return
		}
		s.Touch()
		c.Set(CtxSession, s)
		c.Set(CtxDeviceID, id)
		c.Header(helpers.HeaderDeviceID, id)
		c.Next()
	}
}

// SessionFrom returns the session Device attached, or nil.
func SessionFrom(c *gin.Context) *application.Session {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil
	}
	s, _ := v.(*application.Session)
	return s
}

// RequireUser validates the access token and checks that it belongs to the
// session of this device, which must still be signed in as the token's user.
// It sets userID and userType in the Gin context on success.
func RequireUser(profiles *application.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.AccessToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		s, u, err := profiles.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		if cur := SessionFrom(c); cur != nil && cur.ID != s.ID {
			response.Error[any](c, http.StatusUnauthorized, "token issued to another device", nil)
			return
		}
		c.Set(CtxSession, s)
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUserType, string(u.Type))
		c.Next()
	}
}

// RequireAdmin lets only ADMIN and MASTER accounts through. It runs after
// RequireUser.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := SessionFrom(c)
		if s == nil {
			response.Error[any](c, http.StatusUnauthorized, "not logged in", nil)
			return
		}
		cu := s.State().CurrentUser
		if cu == nil || !cu.Type.Privileged() {
			response.Error[any](c, http.StatusForbidden, "admin access required", nil)
			return
		}
		c.Next()
	}
}
