package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/response"
)

type AuthHandler struct {
	tokens
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, profiles *application.ProfileService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens{Profiles: profiles, Cookies: cookies}, Auth: auth, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type codeRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

type resetInitRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetConfirmRequest struct {
	UID             string `json:"uid" binding:"required"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type changePasswordRequest struct {
	Current         string `json:"currentPassword" binding:"required"`
	Password        string `json:"newPassword" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Code            string `json:"code" binding:"omitempty,len=6,numeric"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Auth.Login(c.Request.Context(), s, req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	meta, err := h.issue(c, s, u)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u.Public(), "login successful", meta)
}

// AdminLogin checks admin credentials and emails the verification code.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	pending, err := h.Auth.AdminLogin(c.Request.Context(), s, req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusAccepted, pending, "verification code sent", nil)
}

func (h *AuthHandler) VerifyAdminLogin(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Auth.VerifyAdminLogin(c.Request.Context(), s, req.Code)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	meta, err := h.issue(c, s, u)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u.Public(), "login successful", meta)
}

// Logout signs the device session out. The device keeps its id.
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	h.Auth.Logout(s)
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// Refresh rotates the token pair. The refresh token comes from its cookie or
// the request body and must belong to this device.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, _ := c.Cookie(helpers.CookieRefresh)
	if refresh == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		refresh = req.RefreshToken
	}
	if refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, s, err := h.Profiles.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	if cur, ok := sessionOf(c); !ok || cur.ID != s.ID {
		if ok {
			response.Error[any](c, http.StatusUnauthorized, "token issued to another device", nil)
		}
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{
		"access_token":       pair.AccessToken,
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func (h *AuthHandler) ResetInit(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req resetInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Auth.RequestPasswordReset(c.Request.Context(), s, req.Email); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusAccepted, map[string]any{"sent": true}, "reset link sent", nil)
}

func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), s, req.UID, req.Password, req.ConfirmPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"reset": true}, "password updated", nil)
}

// PasswordCode emails the code a privileged account needs to change its password.
func (h *AuthHandler) PasswordCode(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	pending, err := h.Auth.RequestPasswordChangeCode(c.Request.Context(), s)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusAccepted, pending, "verification code sent", nil)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	err := h.Auth.ChangePassword(c.Request.Context(), s, application.ChangePasswordInput{
		Current: req.Current,
		New:     req.Password,
		Confirm: req.ConfirmPassword,
		Code:    req.Code,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"changed": true}, "password changed", nil)
}
