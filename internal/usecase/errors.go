package usecase

import "errors"

// Error taxonomy surfaced to the HTTP layer, which is the sole translator
// to status codes. Wrapped causes stay attached via %w so errors.Is keeps
// matching at the controller.
var (
	ErrValidation         = errors.New("required field is missing")
	ErrDuplicateIdentity  = errors.New("user with email or username already exists")
	ErrNotFound           = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid user credentials")
	ErrUnauthorized       = errors.New("unauthorized request")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrTokenReused        = errors.New("refresh token is already used or rotated")
	ErrUpload             = errors.New("failed to upload media")
	ErrInternal           = errors.New("internal error")
)
