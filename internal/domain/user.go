package domain

import "time"

const (
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User is a dashboard operator. PasswordHash is a bcrypt digest.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}
