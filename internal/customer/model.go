package customer

import "time"

// Role is the authorization role attached to a customer.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// Customer represents a wallet owner or an operator.
type Customer struct {
	ID           string
	Name         string
	Surname      string
	TCKN         string
	Role         Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials identify a customer by id or, when CustomerID is empty, by TCKN.
type Credentials struct {
	CustomerID string
	TCKN       string
	Password   string
}

// RegisterInput captures data needed to create a customer.
type RegisterInput struct {
	Name     string
	Surname  string
	TCKN     string
	Role     Role
	Password string
}
