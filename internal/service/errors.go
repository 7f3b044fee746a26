package service

import (
	"errors"
)

// Authentication failures. Every one of them is reported to clients as the
// same 401; the distinction exists for logs, metrics and audit events.
var (
	ErrMissingCredentials   = errors.New("missing credentials")
	ErrMissingSurveyContext = errors.New("missing requested survey id")
	ErrNoMatchingAccount    = errors.New("no matching account")
	ErrBadPassword          = errors.New("bad password")
	ErrMissingCookie        = errors.New("missing session cookie")
	ErrInvalidSignature     = errors.New("invalid token")
	ErrExpired              = errors.New("token expired")
	ErrMissingBackingRecord = errors.New("account no longer exists")
)

// ErrLoginThrottled is returned when the failed-login budget is exhausted.
var ErrLoginThrottled = errors.New("too many failed login attempts")

var authFailures = []error{
	ErrMissingCredentials,
	ErrMissingSurveyContext,
	ErrNoMatchingAccount,
	ErrBadPassword,
	ErrMissingCookie,
	ErrInvalidSignature,
	ErrExpired,
	ErrMissingBackingRecord,
}

// IsAuthFailure reports whether err is one of the authentication failures.
func IsAuthFailure(err error) bool {
	for _, target := range authFailures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func reason(err error) string {
	for _, target := range append(authFailures, ErrLoginThrottled) {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "internal error"
}
