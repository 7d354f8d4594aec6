package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the Gin context key holding the request id; every
// envelope echoes it.
const RequestIDKey = "request_id"

// Envelope is the body of every JSON answer. Data is set on success, Error
// on failure; Meta carries counters and tokens that are not part of Data.
type Envelope[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope[T any](c *gin.Context, status int, ok bool, message string) Envelope[T] {
	return Envelope[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(RequestIDKey),
		Success:   ok,
		Message:   message,
	}
}

// Success writes data with status (200 when zero).
func Success[T any](c *gin.Context, status int, data T, message string, meta any) Envelope[T] {
	if status == 0 {
		status = http.StatusOK
	}
	env := envelope[T](c, status, true, message)
	env.Data = data
	env.Meta = meta
	c.JSON(status, env)
	return env
}

// Error writes a failure envelope with status (400 when zero) and aborts
// the handler chain.
func Error[T any](c *gin.Context, status int, message string, details any) Envelope[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	env := envelope[T](c, status, false, message)
	env.Error = details
	c.AbortWithStatusJSON(status, env)
	return env
}
