package model

// Visibility is the access scope of a credential.
type Visibility string

const (
	VisibilityPersonal Visibility = "personal" // Owner and admins only.
	VisibilityShared   Visibility = "shared"   // Any authenticated caller.
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	return v == VisibilityPersonal || v == VisibilityShared
}

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// NotificationKind classifies an expiration notification.
type NotificationKind string

const (
	NotificationAlert    NotificationKind = "alert"    // Expires within the alert window.
	NotificationCritical NotificationKind = "critical" // Expired, or expires today.
)

// AuditAction names a sensitive action recorded in the audit log.
type AuditAction string

const (
	AuditActionReveal AuditAction = "reveal"
)
