package ports

import (
	"context"

	"github.com/h2eaux/gestion-api/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Validate(ctx context.Context, token string) (*domain.User, error)
	Register(ctx context.Context, requestor *domain.User, username, password string, role domain.Role) (*domain.User, error)
}
