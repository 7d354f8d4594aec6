package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/internal/domain/auth"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/response"
	"github.com/oksasatya/vendor-directory/pkg/validation"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{application.ErrInvalidInput, http.StatusBadRequest},
	{application.ErrInvalidRating, http.StatusBadRequest},
	{application.ErrPasswordMismatch, http.StatusBadRequest},
	{application.ErrPasswordTooShort, http.StatusBadRequest},
	{application.ErrWrongPassword, http.StatusBadRequest},
	{application.ErrTwoFactorRequired, http.StatusBadRequest},
	{helpers.ErrBadDataURI, http.StatusBadRequest},
	{helpers.ErrNotAnImage, http.StatusBadRequest},

	{application.ErrNotLoggedIn, http.StatusUnauthorized},
	{application.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrBadCredentials, http.StatusUnauthorized},
	{auth.ErrChallengeMissing, http.StatusUnauthorized},
	{auth.ErrChallengeExpired, http.StatusUnauthorized},
	{auth.ErrChallengeMismatch, http.StatusUnauthorized},

	{application.ErrForbidden, http.StatusForbidden},
	{application.ErrCannotTargetSelf, http.StatusForbidden},
	{application.ErrCannotTargetMaster, http.StatusForbidden},
	{application.ErrDocumentBanned, http.StatusForbidden},
	{auth.ErrBanned, http.StatusForbidden},
	{auth.ErrNotAuthorized, http.StatusForbidden},

	{application.ErrUserNotFound, http.StatusNotFound},
	{application.ErrVendorNotFound, http.StatusNotFound},
	{application.ErrReviewNotFound, http.StatusNotFound},
	{repo.ErrNotFound, http.StatusNotFound},

	{application.ErrEmailTaken, http.StatusConflict},
	{application.ErrDocumentTaken, http.StatusConflict},
	{repo.ErrDuplicate, http.StatusConflict},

	{auth.ErrLocked, http.StatusLocked},
	{application.ErrConfirmationNeeded, http.StatusPreconditionRequired},
	{application.ErrPhotoUploadDisabled, http.StatusNotImplemented},
	{application.ErrNotificationFailed, http.StatusBadGateway},
}

// statusOf returns the HTTP status for a service error; unknown errors are 500.
func statusOf(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// fail writes err as an error envelope. Validation errors carry per-field
// details; login rejections carry the lockout counters as meta.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	status := statusOf(err)
	var le *application.LoginError
	if errors.As(err, &le) {
		response.Error[any](c, status, le.Error(), gin.H{
			"outcome":             le.Outcome,
			"attempts_left":       le.AttemptsLeft,
			"lock_remaining_secs": int(le.LockRemaining.Seconds()),
		})
		return
	}
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString(response.RequestIDKey),
			}).Error("request failed")
		}
		if status == http.StatusInternalServerError {
			response.Error[any](c, status, "internal server error", nil)
			return
		}
	}
	response.Error[any](c, status, err.Error(), nil)
}

// badPayload answers a request whose body did not bind.
func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
