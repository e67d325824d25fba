package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// AuthProvider records how an account signs in.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	StudentID    string       `db:"student_id" json:"studentId"`
	Department   string       `db:"department" json:"department"`
	Role         UserRole     `db:"role" json:"role"`
	Provider     AuthProvider `db:"provider" json:"provider"`
	Active       bool         `db:"active" json:"active"`
	LastLogin    *time.Time   `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	ListOptions
	Role       *UserRole
	Active     *bool
	Department string
}

// Info returns the public projection embedded in auth responses.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		StudentID:  u.StudentID,
		Department: u.Department,
		Role:       u.Role,
	}
}
