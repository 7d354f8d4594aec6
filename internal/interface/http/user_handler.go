package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/response"
)

type UserHandler struct {
	tokens
	Registration *application.RegistrationService
	Logger       *logrus.Logger
	Now          func() time.Time
}

func NewUserHandler(reg *application.RegistrationService, profiles *application.ProfileService, cookies *helpers.Manager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		tokens:       tokens{Profiles: profiles, Cookies: cookies},
		Registration: reg,
		Logger:       logger,
		Now:          time.Now,
	}
}

// State returns the session as its viewer may see it.
func (h *UserHandler) State(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, NewStateView(s.State(), h.Now()), "state", nil)
}

func (h *UserHandler) RegisterUser(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.RegisterUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Registration.RegisterUser(c.Request.Context(), s, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	meta, err := h.issue(c, s, u)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u.Public(), "account created", meta)
}

func (h *UserHandler) RegisterVendor(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.RegisterVendorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	req.IP = c.GetString("real_ip")
	u, v, err := h.Registration.RegisterVendor(c.Request.Context(), s, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	meta, err := h.issue(c, s, u)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": u.Public(), "vendor": v}, "vendor created", meta)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	u, err := h.Profiles.GetProfile(s)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Profiles.UpdateProfile(c.Request.Context(), s, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile updated", nil)
}

func (h *UserHandler) ToggleTheme(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"theme": h.Profiles.ToggleTheme(s)}, "theme updated", nil)
}
