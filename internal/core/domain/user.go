package domain

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSeller || r == RoleAdmin
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}
