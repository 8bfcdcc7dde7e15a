package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/h2eaux/gestion-api/internal/core/domain"
)

func TestBootstrap_CreatesSeeds(t *testing.T) {
	repo := newStubUserRepo()
	b := NewBootstrapper(repo, zerolog.Nop())

	if err := b.EnsureSeedIdentities(context.Background(), DefaultSeeds()); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	admin, err := repo.FindByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("admin missing: %v", err)
	}
	if admin.Role != domain.RoleAdmin || !admin.Permissions.Parametres {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")) != nil {
		t.Fatal("admin password not hashed from the seed")
	}

	emp, err := repo.FindByUsername(context.Background(), "employe1")
	if err != nil {
		t.Fatalf("employee missing: %v", err)
	}
	if emp.Role != domain.RoleEmployee || emp.Permissions.Parametres || !emp.Permissions.Clients {
		t.Fatalf("unexpected employee: %+v", emp)
	}
}

func TestBootstrap_Idempotent(t *testing.T) {
	repo := newStubUserRepo()
	b := NewBootstrapper(repo, zerolog.Nop())

	if err := b.EnsureSeedIdentities(context.Background(), DefaultSeeds()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first, _ := repo.FindByUsername(context.Background(), "admin")

	// An operator changes the admin's grants; a restart must not reset them.
	repo.users["admin"].Permissions.Chat = false

	if err := b.EnsureSeedIdentities(context.Background(), DefaultSeeds()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(repo.users) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(repo.users))
	}
	again, _ := repo.FindByUsername(context.Background(), "admin")
	if again.ID != first.ID || again.PasswordHash != first.PasswordHash {
		t.Fatal("existing seed account was recreated")
	}
	if again.Permissions.Chat {
		t.Fatal("existing seed account permissions were reset")
	}
}

func TestBootstrap_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("mongo unreachable")
	b := NewBootstrapper(repo, zerolog.Nop())

	if err := b.EnsureSeedIdentities(context.Background(), DefaultSeeds()); err == nil {
		t.Fatal("expected bootstrap to fail fast on store errors")
	}
}
