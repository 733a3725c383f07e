package ports

import (
	"context"

	"dispatch-service/internal/domain"
)

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}
