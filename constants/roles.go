package constants

// User roles
const (
	RoleStudent   = "student"
	RoleEducator  = "educator"
	RoleAdmin     = "admin"
	RoleMedEdTeam = "meded_team"
	RoleCTF       = "ctf"
)

// PrivilegedRoles may manage events, bookings of other users and certificates.
// Everyone else is restricted to their own rows.
var PrivilegedRoles = []string{
	RoleAdmin,
	RoleMedEdTeam,
	RoleCTF,
	RoleEducator,
}

// AllRoles lists every role accepted at registration.
var AllRoles = []string{
	RoleStudent,
	RoleEducator,
	RoleAdmin,
	RoleMedEdTeam,
	RoleCTF,
}

// IsPrivileged reports whether the role is admin-equivalent.
func IsPrivileged(role string) bool {
	for _, r := range PrivilegedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidRole reports whether the role is a known role name.
func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
