// internal/common/errors/handler.go
package errors

import (
	"time"
)

// Handler converts step errors into user-visible follow-up text. Nothing is
// allowed to propagate out of a workflow step as a bare error.
type Handler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// UserText normalizes any error to a StandardError, logs it, and returns the
// text to surface in the conversation.
func (h *Handler) UserText(step string, err error) string {
	stdErr := h.normalize(err)

	h.logger.Error("step failed", map[string]interface{}{
		"step":      step,
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})

	if stdErr.UserMessage != "" {
		return stdErr.UserMessage
	}
	return "Something went wrong while processing your request. Please try again."
}

// Normalize exposes the StandardError for callers that branch on Code.
func (h *Handler) Normalize(err error) *StandardError {
	return h.normalize(err)
}

func (h *Handler) normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
