package glowmarkt

import (
	"errors"
	"fmt"
)

// AuthError reports a rejected login or an expired/invalid token.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("glowmarkt: authentication rejected (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("glowmarkt: authentication rejected (status %d): %s", e.StatusCode, e.Message)
}

// TransientError reports a failure worth retrying: a 5xx answer, throttling,
// or a transport-level drop.
type TransientError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("glowmarkt: transient failure: %v", e.Err)
	}
	return fmt.Sprintf("glowmarkt: transient failure (status %d): %s", e.StatusCode, e.Message)
}

func (e *TransientError) Unwrap() error { return e.Err }

// CatalogError reports a permanent rejection or a payload the client cannot
// interpret, e.g. an unknown resource id or a response missing required
// fields.
type CatalogError struct {
	StatusCode int
	Message    string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("glowmarkt: request rejected (status %d): %s", e.StatusCode, e.Message)
}

func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsTransientError(err error) bool {
	var target *TransientError
	return errors.As(err, &target)
}

func IsCatalogError(err error) bool {
	var target *CatalogError
	return errors.As(err, &target)
}
