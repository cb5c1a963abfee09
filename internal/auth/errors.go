package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrAlreadyRegistered  = errors.New("auth: email already registered")
	ErrNotFound           = errors.New("auth: not found")
	ErrMissingSecret      = errors.New("auth: signing secret is not configured")
)
