package models

import "time"

type Role string

const (
	RoleContractor Role = "contractor"
	RoleSupplier   Role = "supplier"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleContractor, RoleSupplier:
		return true
	default:
		return false
	}
}

// User is a marketplace account. For suppliers, Categories and
// ServiceArea are the matching inputs and are stored normalized.
type User struct {
	Id          string    `json:"id"`
	Role        Role      `json:"role"`
	Name        string    `json:"name"`
	Categories  []string  `json:"categories,omitempty"`
	ServiceArea []string  `json:"serviceArea,omitempty"`
	Onboarded   bool      `json:"onboarded"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Actor identifies the caller of a core operation. The session layer
// owns authentication; the core re-validates ownership and matching
// membership on top of these fields.
type Actor struct {
	UserId    string
	Role      Role
	Onboarded bool
}
