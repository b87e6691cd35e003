package relay

import (
	"errors"
	"fmt"
	"net/http"

	"edit-relay/internal/models"
)

// Kind classifies a relay failure.
type Kind string

const (
	KindInput     Kind = "input"
	KindTransport Kind = "transport"
	KindUpstream  Kind = "upstream"
)

const (
	msgNoInput          = "No input"
	msgEmptyInput       = "Empty instruction and content"
	upstreamSuggestion  = "Check if the model is available and your API key has permissions"
	noResponseGenerated = "No response generated"
)

// Error is a terminal failure for one edit request.
type Error struct {
	Kind       Kind
	Status     int
	Message    string
	Details    *string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func inputError(message string, cause error) *Error {
	return &Error{
		Kind:    KindInput,
		Status:  http.StatusBadRequest,
		Message: message,
		Err:     cause,
	}
}

func transportError(cause error) *Error {
	return &Error{
		Kind:    KindTransport,
		Status:  http.StatusInternalServerError,
		Message: "transport error: " + cause.Error(),
		Err:     cause,
	}
}

func upstreamError(status int, body []byte) *Error {
	details := string(body)
	return &Error{
		Kind:       KindUpstream,
		Status:     status,
		Message:    fmt.Sprintf("API returned HTTP %d", status),
		Details:    &details,
		Suggestion: upstreamSuggestion,
	}
}

// NoInput is the error returned when the request body cannot be used at all.
func NoInput(cause error) *Error {
	return inputError(msgNoInput, cause)
}

// Render converts err into the status and JSON body written to the caller.
func Render(err error) (int, models.ErrorResponse) {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Status, models.ErrorResponse{
			Error:      relayErr.Message,
			Details:    relayErr.Details,
			Suggestion: relayErr.Suggestion,
		}
	}
	return http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"}
}
