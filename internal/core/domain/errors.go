package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid authentication credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrMissingAuth        = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already registered")
	ErrClientNotFound     = errors.New("client not found")
	ErrValidation         = errors.New("validation failed")
	ErrRequestInProgress  = errors.New("a request with this idempotency key is still in progress")
)
