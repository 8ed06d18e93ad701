package models

// RoleType defines the user role type carried in access tokens
type RoleType string

const (
	RoleAdmin      RoleType = "ADMIN"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleStudent    RoleType = "STUDENT"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

// RegistrationStatus is the upstream status of an instructor application
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

// IsValid reports whether s is a known registration status
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

// Actor is the authenticated caller of a request
type Actor struct {
	UserID int64
	Email  string
	Role   RoleType
}

// IsAdmin reports whether the caller has the ADMIN role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
