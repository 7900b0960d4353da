package model

import (
	"strings"
	"time"
)

// Credential is a stored login for an external system. EncryptedSecret is an
// opaque blob produced by the secret cipher; the plaintext never lives here.
// Owner is fixed at creation time.
type Credential struct {
	ID              int64
	Title           string
	Description     string
	URL             string
	Login           string
	EncryptedSecret string
	Visibility      Visibility
	Owner           UserRef
	ExpiresOn       *time.Time // Calendar date at UTC midnight; nil means never.
	Active          bool
	Audit           AuditInfo
}

// IsOwnedBy reports whether email identifies the credential's owner.
func (c Credential) IsOwnedBy(email string) bool {
	return strings.EqualFold(c.Owner.Email, email)
}
