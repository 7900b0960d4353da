package model

// User is a person who can own and access credentials. Email is the identity
// key used by every vault operation.
type User struct {
	ID     int64
	Name   string
	Email  string
	Role   Role
	Active bool
	Audit  AuditInfo
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Ref returns the lightweight reference stored on owned credentials.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email, Name: u.Name}
}

// UserRef identifies a user without carrying role or status.
type UserRef struct {
	ID    int64
	Email string
	Name  string
}
