package cnst

// Role is the canonical snake_case name of a user role
type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleAdmin            Role = "admin"
	RoleRegionalManager  Role = "regional_manager"
	RoleBranchManager    Role = "branch_manager"
	RoleCounselor        Role = "counselor"
	RoleAdmissionOfficer Role = "admission_officer"
	RolePartner          Role = "partner"
	RolePartnerSubUser   Role = "partner_sub_user"
)

// Roles lists every role a user may be created with
var Roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleRegionalManager,
	RoleBranchManager,
	RoleCounselor,
	RoleAdmissionOfficer,
	RolePartner,
	RolePartnerSubUser,
}

// IsValid reports whether r is one of Roles
func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// CanManageUsers reports whether r may create and edit user accounts
func (r Role) CanManageUsers() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}
