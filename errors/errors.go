package errors

import "fmt"

var (
	// Membership engine failures. Each one maps to a distinct transport
	// status at the boundary, see MapToHTTPStatus.
	ErrChatNotFound     = fmt.Errorf("chat not found")
	ErrInvalidOperation = fmt.Errorf("direct chat membership is immutable")
	ErrAlreadyMember    = fmt.Errorf("user already in chat")
	ErrNotAMember       = fmt.Errorf("user not in chat")

	// ErrDirectChatExists reports a lost race on direct chat creation.
	// It never leaves the service layer: the caller re-fetches the chat
	// created by the winner and returns it instead.
	ErrDirectChatExists = fmt.Errorf("direct chat already exists for this pair")

	// Account failures.
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	// ErrAuthFailure covers a bad, expired or missing-when-required token.
	ErrAuthFailure = fmt.Errorf("authentication failed")
)
