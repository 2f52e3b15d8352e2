package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user repository operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByHandle(ctx context.Context, handle string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	UpdateContact(ctx context.Context, userID uuid.UUID, email, phone string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}
