package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrRevokedToken indicates the token was issued for a different admin email
	// or before the last password change
	ErrRevokedToken = errors.New("authentication token has been revoked")

	// ErrInvalidCredentials indicates a login with the wrong email or password
	ErrInvalidCredentials = errors.New("wrong email/password")

	// ErrWrongPassword indicates the current password supplied to a password change is wrong
	ErrWrongPassword = errors.New("wrong password")

	// ErrAccountNotConfigured indicates no admin profile or password has been stored yet
	ErrAccountNotConfigured = errors.New("admin account is not configured")
)
