package domain

// Role роль вызывающего
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
)

// Principal аутентифицированный вызывающий (из JWT)
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsOperator() bool {
	return p.Role == RoleOperator
}

// CanAccess оператор видит всё, клиент только своё
func (p Principal) CanAccess(ownerID string) bool {
	return p.IsOperator() || (p.UserID != "" && p.UserID == ownerID)
}
