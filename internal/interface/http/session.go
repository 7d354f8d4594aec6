package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/response"
)

// sessionOf returns the device session, answering 503 when the route was
// mounted without the Device middleware.
func sessionOf(c *gin.Context) (*application.Session, bool) {
	s := middleware.SessionFrom(c)
	if s == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "no device session", nil)
		return nil, false
	}
	return s, true
}

// tokens issues the cookie pair for a session that just signed in.
type tokens struct {
	Profiles *application.ProfileService
	Cookies  *helpers.Manager
}

func (t tokens) issue(c *gin.Context, s *application.Session, u *entity.User) (map[string]any, error) {
	pair, err := t.Profiles.IssueTokens(c.Request.Context(), u, s.ID)
	if err != nil {
		return nil, err
	}
	t.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	return map[string]any{
		"access_token":       pair.AccessToken,
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	}, nil
}
