package shared

// Roles recognised by the application. Role only gates user administration;
// the financial core is open to any authenticated user of the tenant.
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// ValidRole reports whether role is one of the recognised roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleAgent
}
