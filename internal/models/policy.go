package models

import "strings"

// UnknownOpBehavior selects how the sync reconciler treats operations it has no handler for.
type UnknownOpBehavior string

const (
	// UnknownOpAccept reports unknown operations as successful no-ops.
	UnknownOpAccept UnknownOpBehavior = "accept"
	// UnknownOpReject reports unknown operations as failed.
	UnknownOpReject UnknownOpBehavior = "reject"
)

// DefaultingPolicy names the fallbacks applied to input the API does not recognise.
type DefaultingPolicy struct {
	UnknownRole Role
	UnknownOps  UnknownOpBehavior
}

// DefaultPolicy maps unknown roles to student and accepts unknown sync operations.
func DefaultPolicy() DefaultingPolicy {
	return DefaultingPolicy{UnknownRole: RoleStudent, UnknownOps: UnknownOpAccept}
}

// NormalizeRole lower-cases raw and falls back to UnknownRole when it is not a supported role.
func (p DefaultingPolicy) NormalizeRole(raw string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if role.Valid() {
		return role
	}
	if p.UnknownRole.Valid() {
		return p.UnknownRole
	}
	return RoleStudent
}

// AcceptsUnknownOps reports whether unknown sync operations succeed as no-ops.
func (p DefaultingPolicy) AcceptsUnknownOps() bool {
	return p.UnknownOps != UnknownOpReject
}
