// Package auth resolves bearer credentials into caller identities.
package auth

import "fmt"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer, RoleVendor, RoleAdmin:
		return Role(s), nil
	// older tokens used "user" for buyers
	case "user", "customer":
		return RoleBuyer, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Identity is the authenticated caller. Name and Email are display hints
// carried by the token and may be empty.
type Identity struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (i Identity) Is(r Role) bool { return i.Role == r }
