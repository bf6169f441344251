package models

// Role separates the two portals of the mess.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// LoginPath is the portal a role signs in from.
func (r Role) LoginPath() string {
	if r == RoleAdmin {
		return "/manage/login"
	}
	return "/accounts/login"
}

// DashboardPath is where a signed-in role lands.
func (r Role) DashboardPath() string {
	if r == RoleAdmin {
		return "/manage/dashboard"
	}
	return "/user/dashboard"
}
