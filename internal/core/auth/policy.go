package auth

import "github.com/storefront/ecommerce-api/internal/core/domain"

// Requirement describes who may mutate a resource: holders of Role, or the
// resource's owner when AllowOwner is set.
type Requirement struct {
	Name       string
	Role       domain.Role
	AllowOwner bool
}

var (
	// UserProfileMutation guards profile edits: the account itself or an admin.
	UserProfileMutation = Requirement{Name: "user_profile", Role: domain.RoleElevated, AllowOwner: true}
	// AccountDeletion guards account removal: admins only.
	AccountDeletion = Requirement{Name: "user_account", Role: domain.RoleElevated}
	// StoreItemMutation guards store item create/update/delete: admins only.
	StoreItemMutation = Requirement{Name: "store_item", Role: domain.RoleElevated}
)

// CanMutate decides whether claims satisfy req for a resource owned by
// ownerID. An empty ownerID never matches.
func CanMutate(claims domain.SessionClaims, ownerID string, req Requirement) bool {
	if claims.Role >= req.Role {
		return true
	}
	return req.AllowOwner && ownerID != "" && claims.UserID == ownerID
}
