package asc

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrNotFound - the requested resource does not exist (or is not yet
// visible; freshly created profiles can 404 for a short window).
var ErrNotFound = stderrors.New("resource not found")

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// ServiceError is a single error object from an App Store Connect error
// document.
type ServiceError struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ErrorResponse is the error document the API returns on non-2xx responses.
type ErrorResponse struct {
	StatusCode int
	Errors     []ServiceError `json:"errors"`
}

func (e *ErrorResponse) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("App Store Connect returned status %d", e.StatusCode)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, svcErr := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", svcErr.Code, svcErr.Detail))
	}
	return fmt.Sprintf("App Store Connect returned status %d: %s", e.StatusCode, strings.Join(parts, "; "))
}
