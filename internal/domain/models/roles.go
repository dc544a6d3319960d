package models

// Canonical member role identifiers.
//
// These values are stored in the database in the Member.Role field and are
// used throughout the application as stable keys. The storage layer does
// not enforce them; validation happens at the API boundary so an invalid
// role is rejected before any document write.
const (
	RoleAdmin     = "Admin"
	RoleDeveloper = "Developer"
	RoleQA        = "QA"
	RoleMember    = "Member" // default for newly added members
)

// Roles is the full set of allowed member role identifiers.
//
// This slice is the single source of truth for validation. Any new role
// must be added here to be considered valid.
var Roles = []string{
	RoleAdmin,
	RoleDeveloper,
	RoleQA,
	RoleMember,
}

// ValidRole reports whether role is one of the canonical identifiers.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
