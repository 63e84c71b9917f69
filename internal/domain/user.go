package domain

import "time"

// Role is the closed set of account types on the platform.
type Role string

const (
	RoleStudent   Role = "student"
	RoleStaff     Role = "staff"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleProfessor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// WalletBalance is the internal balance in cents. It never goes
	// negative; only the payment and cancellation flows mutate it.
	WalletBalance int64 `json:"wallet_balance"`
}
