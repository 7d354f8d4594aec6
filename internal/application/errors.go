package application

import "errors"

var (
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrForbidden           = errors.New("operation not allowed for this account")
	ErrConfirmationNeeded  = errors.New("confirmation required")
	ErrUserNotFound        = errors.New("user not found")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrReviewNotFound      = errors.New("review not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrDocumentTaken       = errors.New("document already registered")
	ErrDocumentBanned      = errors.New("document or email is banned")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrPasswordTooShort    = errors.New("password must have at least 6 characters")
	ErrWrongPassword       = errors.New("current password is wrong")
	ErrTwoFactorRequired   = errors.New("verification code required")
	ErrCannotTargetSelf    = errors.New("cannot target your own account")
	ErrCannotTargetMaster  = errors.New("the master account cannot be modified")
	ErrNotificationFailed  = errors.New("could not send notification")
	ErrPhotoUploadDisabled = errors.New("photo upload is not configured")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTooManySessions     = errors.New("too many open sessions")
)
