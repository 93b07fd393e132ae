package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx API response
type Error struct {
	Status int    `json:"statusCode"`
	Msg    string `json:"message"`
	Stack  string `json:"stack,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("status: %d, msg: %s", e.Status, e.Msg)
}

// StatusOf returns the HTTP status carried by err, or 0 for transport errors
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsUnauthorized reports a missing or invalid access token
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsTokenExpired reports an expired access token; refresh and retry
func IsTokenExpired(err error) bool {
	return StatusOf(err) == http.StatusGone
}

// IsForbidden reports a permission failure or a reused refresh token
func IsForbidden(err error) bool {
	return StatusOf(err) == http.StatusForbidden
}

// IsNotFound reports a missing resource
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
