package rbac

// Role constants
const (
	RoleAdmin       = "admin"
	RoleCenterOwner = "center_owner"
	RoleCreator     = "creator"
	RoleUser        = "user"
)

// Permission constants
const (
	PermManageCenter     = "manage_center"
	PermDecideDonation   = "decide_donation"
	PermCreateProduct    = "create_product"
	PermDeleteAnyProduct = "delete_any_product"
	PermRejectAnyEscrow  = "reject_any_escrow"
	PermPurchase         = "purchase"
	PermDonate           = "donate"
	PermExchange         = "exchange"
	PermEditProfile      = "edit_profile"
	PermManageCreators   = "manage_creators"
)

// RolePermissions defines what each role can do. Roles stack: a center
// owner keeps all user permissions.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermManageCenter, PermDecideDonation, PermCreateProduct,
		PermDeleteAnyProduct, PermRejectAnyEscrow, PermManageCreators,
		PermPurchase, PermDonate, PermExchange, PermEditProfile,
	},
	RoleCenterOwner: {
		PermManageCenter, PermDecideDonation,
		PermPurchase, PermDonate, PermExchange, PermEditProfile,
	},
	RoleCreator: {
		PermCreateProduct,
		PermPurchase, PermDonate, PermExchange, PermEditProfile,
	},
	RoleUser: {
		PermPurchase, PermDonate, PermExchange, PermEditProfile,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsModeration reports whether the permission touches other users'
// entities (admin-only).
func IsModeration(permission string) bool {
	return permission == PermDeleteAnyProduct || permission == PermRejectAnyEscrow
}
