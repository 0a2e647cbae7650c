package domain

import (
	"context"
	"time"
)

// User represents a registered account
type User struct {
	ID           string // Native identifier (24-char hex, assigned at creation)
	Email        string // Unique email address
	Name         string // Display name
	PasswordHash string // Bcrypt hashed password (never returned in API)
	Phone        string
	Address      string
	City         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProjection is the slice of a user that gets joined into offer responses
type UserProjection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Projection returns the user fields that are safe to embed in responses
func (u *User) Projection() UserProjection {
	return UserProjection{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}
