package service

import "errors"

// Sentinel errors form the service error taxonomy. Handlers map them to
// HTTP statuses with errors.Is; validation failures additionally carry
// the offending field via validation.FieldError.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPInvalid         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP expired")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)
