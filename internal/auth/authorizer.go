package auth

import "github.com/spec-kit/account-service/internal/domain"

// Capability names an authorization requirement evaluated against a principal.
type Capability string

const (
	CapabilityAdminOnly        Capability = "admin_only"
	CapabilityManagerOrAdmin   Capability = "manager_or_admin"
	CapabilityAnyAuthenticated Capability = "any_authenticated"
	CapabilityVerifiedOnly     Capability = "verified_only"
)

// capabilityChecks is the predicate table dispatched by Authorize. Every
// predicate assumes a non-nil, active principal.
var capabilityChecks = map[Capability]func(*domain.User) bool{
	CapabilityAdminOnly: func(u *domain.User) bool {
		return u.Role == domain.RoleAdmin
	},
	CapabilityManagerOrAdmin: func(u *domain.User) bool {
		return u.HasAnyRole(domain.RoleManager, domain.RoleAdmin)
	},
	CapabilityAnyAuthenticated: func(u *domain.User) bool {
		return u.HasAnyRole(domain.RoleUser, domain.RoleManager, domain.RoleAdmin)
	},
	CapabilityVerifiedOnly: func(u *domain.User) bool {
		return u.Verified
	},
}

// Authorize evaluates a capability against a principal. It is total: a nil,
// inactive, or unknown-capability input is simply false, never a panic.
func Authorize(principal *domain.User, capability Capability) bool {
	if principal == nil || !principal.Active {
		return false
	}
	check, ok := capabilityChecks[capability]
	if !ok {
		return false
	}
	return check(principal)
}

// AuthorizeOwner grants access to admins or the owner of the resource.
func AuthorizeOwner(principal *domain.User, ownerID string) bool {
	if principal == nil || !principal.Active {
		return false
	}
	if principal.Role == domain.RoleAdmin {
		return true
	}
	return ownerID != "" && principal.ID == ownerID
}
