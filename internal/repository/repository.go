package repository

import (
	"context"

	"github.com/marloe/showbill/internal/domain"
)

// UserRepository persists account credentials.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}
