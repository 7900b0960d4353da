package model

import "errors"

// Sentinel errors shared across the vault. Callers wrap them with context via
// fmt.Errorf("...: %w", err) and match with errors.Is.
var (
	// ErrUnauthorized means the caller lacks the role or ownership required.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the credential or user does not exist or is inactive.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration means startup configuration is unusable.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrMalformedCiphertext means a stored blob is not decodable or too short.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrTampered means authentication of a ciphertext failed.
	ErrTampered = errors.New("ciphertext tampered or corrupt")

	// ErrDecryption wraps any cipher failure surfaced by a reveal.
	ErrDecryption = errors.New("decryption failure")

	// ErrAuditSink means an audit record could not be written.
	ErrAuditSink = errors.New("audit sink failure")
)
