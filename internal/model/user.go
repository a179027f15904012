package model

import "time"

// Role is the access role carried by a user account and by the access
// token's "role" claim.
type Role string

const (
	RoleVolunteer       Role = "volunteer"
	RoleDistrictAdmin   Role = "district_admin"
	RoleDepartmentAdmin Role = "department_admin"
	RoleStateAdmin      Role = "state_admin"
	RoleCMSManager      Role = "cms_manager"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleVolunteer, RoleDistrictAdmin, RoleDepartmentAdmin, RoleStateAdmin, RoleCMSManager}

// Valid reports whether r is one of the fixed role tokens.
func (r Role) Valid() bool {
	switch r {
	case RoleVolunteer, RoleDistrictAdmin, RoleDepartmentAdmin, RoleStateAdmin, RoleCMSManager:
		return true
	}
	return false
}

// User represents an account row in the `users` table.
//
// Fields:
//
//	ID           – UUID primary key.
//	Email        – unique, lower-cased email address.
//	Name         – display name.
//	PasswordHash – bcrypt hash; never serialised.
//	Role         – one of the Role constants.
//	District     – scoping district for district admins (optional otherwise).
//	IsActive     – disabled accounts cannot log in.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	District     *string   `json:"district,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DistrictName returns the user's district or "" when unset.
func (u User) DistrictName() string {
	if u.District == nil {
		return ""
	}
	return *u.District
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
