package errors

import (
	stderrors "errors"
	"net/http"
)

// statusByError is the explicit domain-failure to HTTP status table consulted
// once at the boundary. Anything not listed is an internal failure and maps
// to 500 without exposing its detail.
var statusByError = []struct {
	err    error
	status int
}{
	{ErrChatNotFound, http.StatusNotFound},
	{ErrNotAMember, http.StatusNotFound},
	{ErrAlreadyMember, http.StatusConflict},
	{ErrInvalidOperation, http.StatusForbidden},
	{ErrUserAlreadyExists, http.StatusBadRequest},
	{ErrInvalidPassword, http.StatusBadRequest},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrAuthFailure, http.StatusUnauthorized},
}

// MapToHTTPStatus resolves a domain error to its transport status.
// Wrapped errors are matched through errors.Is, so services are free to
// annotate sentinels with context.
func MapToHTTPStatus(err error) int {
	for _, entry := range statusByError {
		if stderrors.Is(err, entry.err) {
			return entry.status
		}
	}
	return http.StatusInternalServerError
}

// IsDomain reports whether err belongs to the expected, recoverable taxonomy.
func IsDomain(err error) bool {
	return MapToHTTPStatus(err) != http.StatusInternalServerError
}
