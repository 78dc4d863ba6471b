package auth

type Role string

const (
	RoleOwner    Role = "owner"   // Company owner - full access
	RoleManager  Role = "manager" // Can generate payroll
	RoleEmployee Role = "employee"
)

// CanManagePayroll reports whether role may preview and generate payroll.
func (r Role) CanManagePayroll() bool {
	return r == RoleManager || r == RoleOwner
}
