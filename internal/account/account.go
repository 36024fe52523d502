package account

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrAlreadyExists = errors.New("email already registered")
	ErrUnauthorized  = errors.New("unauthorized")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

//go:generate mockgen -destination=mock_account_test.go -package=account -self_package=lectopus/internal/account lectopus/internal/account Repository,Blacklist

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

// Blacklist holds revoked token ids until they expire.
type Blacklist interface {
	Add(ctx context.Context, jti, userID string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}
