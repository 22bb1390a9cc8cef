package domain

import (
	"encoding/json"
	"time"
)

// Role is the privilege level carried by an identity and its session claims.
type Role uint8

const (
	RoleStandard Role = iota
	RoleElevated
)

// RoleFromAdminFlag maps the persisted/wire isAdmin flag to a Role.
func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleElevated
	}
	return RoleStandard
}

// IsElevated reports whether r grants platform-wide mutation rights.
func (r Role) IsElevated() bool { return r == RoleElevated }

func (r Role) String() string {
	if r == RoleElevated {
		return "elevated"
	}
	return "standard"
}

// MarshalJSON keeps the wire format of the role as the isAdmin boolean.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.IsElevated())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var isAdmin bool
	if err := json.Unmarshal(b, &isAdmin); err != nil {
		return err
	}
	*r = RoleFromAdminFlag(isAdmin)
	return nil
}

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"isAdmin"`
	Image        string    `json:"image,omitempty"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SessionClaims is the identity asserted by a verified session token.
type SessionClaims struct {
	UserID string
	Email  string
	Role   Role
}
