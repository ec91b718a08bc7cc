package model

import "time"

// User roles as carried in JWT claims and the users table.
const (
	RoleFarmer = "FARMER"
	RoleBuyer  = "BUYER"
	RoleAdmin  = "ADMIN"
)

// User is read-only in this service: accounts are created and
// authenticated by the user service, we only look them up.
type User struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Phone         string    `db:"phone" json:"phone"`
	Role          string    `db:"role" json:"role"`
	PhoneVerified bool      `db:"phone_verified" json:"phoneVerified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
