package models

import (
	"strings"
	"time"
)

// Role is the single authorization role of a user. The string value is what
// the access-control layer and the database see.
type Role string

const (
	RoleAdmin          Role = "ROLE_ADMIN"
	RoleResponsable    Role = "ROLE_RESPONSABLE"
	RoleProjectManager Role = "ROLE_PROJECT_MANAGER"
	RoleLeadDeveloper  Role = "ROLE_LEAD_DEVELOPER"
	RoleDeveloper      Role = "ROLE_DEVELOPER"
	RoleUser           Role = "ROLE_USER"
)

var AllRoles = []Role{
	RoleAdmin, RoleResponsable, RoleProjectManager,
	RoleLeadDeveloper, RoleDeveloper, RoleUser,
}

func (r Role) Valid() bool {
	for _, v := range AllRoles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRole accepts both "ROLE_ADMIN" and "admin"; anything unknown is ROLE_USER.
func ParseRole(s string) Role {
	r, ok := LookupRole(s)
	if !ok {
		return RoleUser
	}
	return r
}

// LookupRole accepts "ROLE_ADMIN" as well as "admin".
func LookupRole(s string) (Role, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	if !strings.HasPrefix(s, "ROLE_") {
		s = "ROLE_" + s
	}
	r := Role(s)
	return r, r.Valid()
}

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // не отдаём наружу
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           Role      `json:"role"`
	Avatar         string    `json:"avatar,omitempty"`
	TelegramChatID *int64    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
