package accounts

import "errors"

var (
	ErrUserNotFound       = errors.New("accounts: user not found")
	ErrEmailTaken         = errors.New("accounts: email already registered")
	ErrInvalidCredentials = errors.New("accounts: invalid email or password")
	ErrInvalidName        = errors.New("accounts: first and last name are required")
	ErrInvalidEmail       = errors.New("accounts: a valid email is required")
	ErrWeakPassword       = errors.New("accounts: password must be at least 8 characters long")
)
