package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_MapToHTTPStatus(t *testing.T) {
	req := require.New(t)

	req.Equal(http.StatusNotFound, MapToHTTPStatus(ErrChatNotFound))
	req.Equal(http.StatusNotFound, MapToHTTPStatus(ErrNotAMember))
	req.Equal(http.StatusConflict, MapToHTTPStatus(ErrAlreadyMember))
	req.Equal(http.StatusForbidden, MapToHTTPStatus(ErrInvalidOperation))
	req.Equal(http.StatusUnauthorized, MapToHTTPStatus(ErrInvalidCredentials))
	req.Equal(http.StatusUnauthorized, MapToHTTPStatus(ErrAuthFailure))
	req.Equal(http.StatusBadRequest, MapToHTTPStatus(ErrUserAlreadyExists))
}

func Test_MapToHTTPStatus_Matches_Wrapped_Errors(t *testing.T) {
	req := require.New(t)

	wrapped := fmt.Errorf("adding member: %w", ErrAlreadyMember)
	req.Equal(http.StatusConflict, MapToHTTPStatus(wrapped))
}

func Test_MapToHTTPStatus_Unknown_Is_Internal(t *testing.T) {
	req := require.New(t)

	req.Equal(http.StatusInternalServerError, MapToHTTPStatus(fmt.Errorf("disk on fire")))
	req.False(IsDomain(fmt.Errorf("disk on fire")))
	req.True(IsDomain(ErrChatNotFound))
}
