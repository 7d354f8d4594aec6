package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/pkg/response"
)

// AdminHandler exposes the administrative operations. Routes are mounted
// behind RequireUser and RequireAdmin; the service re-checks the role.
type AdminHandler struct {
	Admin  *application.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(admin *application.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Admin: admin, Logger: logger}
}

type banRequest struct {
	Value   string `json:"value" binding:"required,max=200"`
	Confirm bool   `json:"confirm"`
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

type featureRequest struct {
	Days int `json:"days" binding:"gte=0,lte=365"`
}

// confirmed reads the confirm flag from the query string or, failing that,
// a JSON body.
func confirmed(c *gin.Context) bool {
	if v := c.Query("confirm"); v != "" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	var req confirmRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}
	return req.Confirm
}

func (h *AdminHandler) Ban(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Admin.Ban(c.Request.Context(), s, req.Value, req.Confirm); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"banned": req.Value}, "value banned", nil)
}

func (h *AdminHandler) Unban(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	value := c.Param("value")
	if err := h.Admin.Unban(c.Request.Context(), s, value); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"unbanned": value}, "value unbanned", nil)
}

func (h *AdminHandler) UnlockUser(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	if err := h.Admin.UnlockUser(c.Request.Context(), s, c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"unlocked": true}, "user unlocked", nil)
}

// ResetPassword sets the recovery password on an account (MASTER only).
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	if err := h.Admin.MasterResetPassword(c.Request.Context(), s, c.Param("id"), confirmed(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password reset", nil)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	if err := h.Admin.DeleteUser(c.Request.Context(), s, c.Param("id"), confirmed(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}

func (h *AdminHandler) EditUser(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.UserPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Admin.EditUser(c.Request.Context(), s, c.Param("id"), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u.Public(), "user updated", nil)
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.CreateAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Admin.CreateAdmin(c.Request.Context(), s, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u.Public(), "admin created", nil)
}

func (h *AdminHandler) DeleteVendor(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	if err := h.Admin.DeleteVendor(c.Request.Context(), s, c.Param("id"), confirmed(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "vendor deleted", nil)
}

// FeatureVendor promotes a listing for the given days; zero ends it.
func (h *AdminHandler) FeatureVendor(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	until, err := h.Admin.FeatureVendor(c.Request.Context(), s, c.Param("id"), req.Days)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"featuredUntil": until}, "vendor featured", nil)
}

func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.ConfigInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	cfg, err := h.Admin.UpdateAppConfig(c.Request.Context(), s, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cfg, "config updated", nil)
}

func (h *AdminHandler) FactoryReset(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	if err := h.Admin.FactoryReset(c.Request.Context(), s, confirmed(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "directory reset", nil)
}

func (h *AdminHandler) SecurityLogs(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	logs, err := h.Admin.SecurityLogs(s)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, logs, "security logs", gin.H{"count": len(logs)})
}

func (h *AdminHandler) ClearSecurityLogs(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	if err := h.Admin.ClearSecurityLogs(s); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"cleared": true}, "security logs cleared", nil)
}
