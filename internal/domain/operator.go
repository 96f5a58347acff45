package domain

import "time"

// Operator represents a back-office user of the fulfilment API.
type Operator struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never serialized in responses
	Role         OperatorRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// OperatorRole is a string type for the operator's role in the system.
type OperatorRole string

const (
	RoleAdmin    OperatorRole = "admin"
	RoleOperator OperatorRole = "operator"
)

// OperatorRegistration is the input payload for registration.
type OperatorRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
