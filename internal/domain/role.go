package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Role is a normalized actor role
type Role string

const (
	RoleDev   Role = "DEV"
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// ErrUnknownRole is returned for role strings outside the closed enum
var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole normalizes a raw role string into the closed enum.
// Comparison is case-insensitive; unknown values are rejected, never defaulted.
func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(RoleDev):
		return RoleDev, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleStaff):
		return RoleStaff, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// Actor is an authenticated user acting on appointments
type Actor struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}

// CanActOn reports whether the actor may operate on an appointment
// assigned to the given professional.
// DEV and ADMIN act on any appointment; STAFF only on their own.
func (a Actor) CanActOn(professionalID int64) bool {
	switch a.Role {
	case RoleDev, RoleAdmin:
		return true
	case RoleStaff:
		return a.ID == professionalID
	default:
		return false
	}
}

// SystemActor is used by background jobs for audit stamps
var SystemActor = Actor{ID: 0, Name: "system", Email: "", Role: RoleDev}
