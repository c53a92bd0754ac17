// Package common defines shared constants and sentinel errors used across
// matchkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Authorization errors. ErrorForbidden means the record exists but the
	// acting principal may not change it.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrInvalidToken   = errors.New("invalid token")

	// Write payload errors.
	ErrorValidation = errors.New("validation error")
	ErrNoUpdateData = errors.New("no update data has been provided")

	// Store-level failure inside a unit of work.
	ErrTransactionFailed = errors.New("transaction failed")

	// Secret field errors. Both degrade the field to absent on read paths.
	ErrMalformedSecret  = errors.New("malformed secret")
	ErrDecryptionFailed = errors.New("decryption failed")

	// Identity provider errors. Non-fatal on read paths.
	ErrIdentityLookupFailed = errors.New("identity lookup failed")

	ErrorInternal = errors.New("internal error")
)
