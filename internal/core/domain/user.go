package domain

import "time"

// Role is the coarse account type. The set is closed.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User models an authenticated identity in the credential store.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	Permissions  Permissions `json:"permissions"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IsAdmin reports whether the identity holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
