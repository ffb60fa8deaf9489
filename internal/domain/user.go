package domain

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	Email     string `db:"email"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"`
	CreatedAt string `db:"created_at"`
}

// Registration is the input of a sign-up request. Role is optional and
// defaults to RoleUser.
type Registration struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// Claims is the identity asserted by a verified token.
type Claims struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"-"`
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }
