package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	errInvalidRequest   = "invalid_request"
	errValidationFailed = "validation_failed"
	errUnreadableFile   = "unreadable_file"
)

func (s *Server) fail(c echo.Context, status int, code, message string) error {
	s.requestLogger(c).Warn("request rejected",
		zap.Int("status", status),
		zap.String("error", code),
		zap.String("message", message),
	)
	return c.JSON(status, ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: requestID(c),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) badRequest(c echo.Context, code, message string) error {
	return s.fail(c, http.StatusBadRequest, code, message)
}
