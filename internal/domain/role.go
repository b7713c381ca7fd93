package domain

// Role enumerates privilege levels checked by the access gate.
type Role string

const (
	RoleCustomer           Role = "CUSTOMER"
	RoleAdministrator      Role = "ADMINISTRATOR"
	RoleSuperAdministrator Role = "SUPER_ADMINISTRATOR"
)

func (r Role) rank() int {
	switch r {
	case RoleCustomer:
		return 1
	case RoleAdministrator:
		return 2
	case RoleSuperAdministrator:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.rank() > 0 && r.rank() >= min.rank()
}

// Principal is the authentication context handed to every service operation.
// The zero value is an anonymous caller.
type Principal struct {
	AccountID int64
	Username  string
	Role      Role
	SessionID string
}

// Authenticated reports whether the principal belongs to a logged-in account.
func (p Principal) Authenticated() bool {
	return p.AccountID != 0
}
