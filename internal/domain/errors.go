package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrCardDeclined      = errors.New("card declined")
	ErrInvalidWebhook    = errors.New("invalid webhook payload or signature")
	ErrReconcileRequired = errors.New("charge succeeded but donation was not recorded")
)

// OAuthError is returned when the platform rejects an authorization code.
type OAuthError struct {
	Code        string
	Description string
}

func (e *OAuthError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("oauth: %s", e.Code)
	}
	return fmt.Sprintf("oauth: %s: %s", e.Code, e.Description)
}

// DeclineError carries the platform message shown to the donor.
type DeclineError struct {
	Message string
	Code    string
}

func (e *DeclineError) Error() string {
	return "card declined: " + e.Message
}

func (e *DeclineError) Unwrap() error { return ErrCardDeclined }
