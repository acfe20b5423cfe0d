package domain

// Operator roles allowed to record and cancel sales.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// Operator is a pharmacy staff account that authenticates against the API.
type Operator struct {
	ID        int64  `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	Email     string `json:"email" db:"email"`
	Password  string `json:"password,omitempty" db:"password"`
	Role      string `json:"role" db:"role"`
	CreatedAt string `json:"created_at,omitempty" db:"created_at"`
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCashier
}
