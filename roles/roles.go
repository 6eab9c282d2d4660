package roles

import (
	"context"
	"strings"
	"time"
)

// Role is the privilege level embedded in a credential. There are exactly
// two levels; elevation is decided by a static allow-list, not a policy
// engine.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// Parse returns the Role for s, and whether s named a known role.
func Parse(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

// Claim is the durable record of the privilege level attached to an
// identity. It exists so a later resolution can tell "first login" apart
// from "role changed", which decides whether outstanding credentials get
// invalidated.
type Claim struct {
	Subject   string
	Email     string
	Role      Role
	UpdatedAt time.Time
}

// ClaimRepo stores privilege claims keyed by subject.
type ClaimRepo interface {
	GetClaim(ctx context.Context, subject string) (*Claim, error) // errors.ErrNotFound when absent
	UpsertClaim(ctx context.Context, claim *Claim) error
}

// Revoker invalidates every outstanding credential for a subject.
type Revoker interface {
	RevokeAll(ctx context.Context, subject string) error
}

// NormalizeEmail lowercases and trims an email for allow-list comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
