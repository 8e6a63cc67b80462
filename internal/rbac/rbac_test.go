package rbac

import "testing"

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role string
		perm string
		want bool
	}{
		{RoleAdmin, PermDeleteAnyProduct, true},
		{RoleAdmin, PermManageCreators, true},
		{RoleCenterOwner, PermDecideDonation, true},
		{RoleCenterOwner, PermManageCreators, false},
		{RoleCenterOwner, PermDeleteAnyProduct, false},
		{RoleCreator, PermCreateProduct, true},
		{RoleUser, PermDecideDonation, false},
		{RoleUser, PermPurchase, true},
		{"unknown", PermPurchase, false},
	}
	for _, c := range cases {
		if got := HasPermission(c.role, c.perm); got != c.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", c.role, c.perm, got, c.want)
		}
	}
}

func TestModerationPermsAreAdminOnly(t *testing.T) {
	for role, perms := range RolePermissions {
		if role == RoleAdmin {
			continue
		}
		for _, p := range perms {
			if IsModeration(p) {
				t.Errorf("role %s must not hold moderation permission %s", role, p)
			}
		}
	}
}
