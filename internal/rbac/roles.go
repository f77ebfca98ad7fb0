package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	// RoleAdmin can mutate the console: messages, hours, ignored numbers,
	// notification settings.
	RoleAdmin = "admin"
	// RoleAnalyst is read-only: call analytics and listings.
	RoleAnalyst = "analyst"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
