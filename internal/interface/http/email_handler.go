package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/pkg/response"
)

// EmailHandler accepts the contact form and queues it for the feedback inbox.
type EmailHandler struct {
	Vendors     *application.VendorService
	Logger      *logrus.Logger
	SendEnabled bool
}

func NewEmailHandler(vendors *application.VendorService, logger *logrus.Logger, sendEnabled bool) *EmailHandler {
	return &EmailHandler{Vendors: vendors, Logger: logger, SendEnabled: sendEnabled}
}

// Feedback enqueues the message. With sending disabled it is only logged.
func (h *EmailHandler) Feedback(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.FeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Vendors.SendFeedback(c.Request.Context(), s, req); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("failed to enqueue feedback")
		}
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusAccepted, map[string]any{"enqueued": h.SendEnabled, "disabled": !h.SendEnabled}, "feedback received", nil)
}
