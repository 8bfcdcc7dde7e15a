package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/h2eaux/gestion-api/internal/core/domain"
	"github.com/h2eaux/gestion-api/internal/core/ports"
)

// SeedIdentity describes an account that must exist after startup.
type SeedIdentity struct {
	Username    string
	Password    string
	Role        domain.Role
	Permissions domain.Permissions
}

// DefaultSeeds returns the built-in admin and sample employee accounts.
func DefaultSeeds() []SeedIdentity {
	return []SeedIdentity{
		{
			Username:    "admin",
			Password:    "admin123",
			Role:        domain.RoleAdmin,
			Permissions: domain.DefaultPermissions(domain.RoleAdmin),
		},
		{
			Username:    "employe1",
			Password:    "employe123",
			Role:        domain.RoleEmployee,
			Permissions: domain.DefaultPermissions(domain.RoleEmployee),
		},
	}
}

// Bootstrapper creates the seed accounts at process start.
type Bootstrapper struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewBootstrapper(repo ports.UserRepository, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{repo: repo, log: log}
}

// EnsureSeedIdentities creates every seed whose username is absent. Existing
// accounts are left exactly as they are, so running it on every restart is
// safe.
func (b *Bootstrapper) EnsureSeedIdentities(ctx context.Context, seeds []SeedIdentity) error {
	for _, seed := range seeds {
		_, err := b.repo.FindByUsername(ctx, seed.Username)
		if err == nil {
			b.log.Debug().Str("username", seed.Username).Msg("seed identity present")
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("bootstrap %s: %w", seed.Username, err)
		}

		_, err = newIdentity(ctx, b.repo, seed.Username, seed.Password, seed.Role, seed.Permissions)
		switch {
		case errors.Is(err, domain.ErrUserExists):
			// another instance won the race
			continue
		case err != nil:
			return fmt.Errorf("bootstrap %s: %w", seed.Username, err)
		}
		b.log.Info().Str("username", seed.Username).Str("role", string(seed.Role)).Msg("seed identity created")
	}
	return nil
}
