package auth

// Role is a caller's access level on the dashboard API. Viewers read the
// feed and the alert list, operators may also acknowledge alerts, and admin
// is a superset kept for future provisioning surfaces.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// ordering ranks the known roles for RoleAtLeast. Anything absent ranks
// below viewer.
var ordering = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// NormalizeRole maps a claim string onto a known role. The bool reports
// whether the value was recognized.
func NormalizeRole(value string) (Role, bool) {
	role := Role(value)
	if _, known := ordering[role]; !known {
		return "", false
	}
	return role, true
}

// RoleAtLeast reports whether role grants everything required grants.
func RoleAtLeast(role, required Role) bool {
	return ordering[role] >= ordering[required]
}
