// ABOUTME: Gateway error taxonomy and decoding of FastAPI-style error bodies
// ABOUTME: Maps "detail" strings and validation lists onto *Error

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client errors
var (
	ErrMissingBaseURL = errors.New("gateway base URL is not configured")
	ErrUnauthorized   = errors.New("session is not authorized")
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// Error is a non-2xx response from the gateway.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// IsValidation reports whether err is a gateway rejection of the request body.
func IsValidation(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity
}

// validationDetail is one entry of a "detail" list.
type validationDetail struct {
	Msg string `json:"msg"`
}

// decodeError builds an *Error from a failed response.
func decodeError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &Error{
		StatusCode: resp.StatusCode,
		Message:    detailMessage(body, resp.StatusCode),
	}
}

// detailMessage extracts the human readable message from an error body.
func detailMessage(body []byte, status int) string {
	fallback := fmt.Sprintf("Error %d", status)

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		if text == "" {
			return fallback
		}
		return text
	}

	var details []validationDetail
	if err := json.Unmarshal(envelope.Detail, &details); err == nil && len(details) > 0 {
		msgs := make([]string, 0, len(details))
		for _, d := range details {
			if d.Msg == "" {
				msgs = append(msgs, "Error de validación")
				continue
			}
			msgs = append(msgs, d.Msg)
		}
		return strings.Join(msgs, ", ")
	}

	return fallback
}
