package ports

import (
	"context"
	"time"

	"github.com/h2eaux/gestion-api/internal/core/domain"
)

// ClientRepository defines persistence operations for client records.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	// List returns up to limit records, newest created_at first.
	List(ctx context.Context, limit int) ([]*domain.Client, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	// Update atomically applies patch and sets updated_at, returning the
	// stored record after the write.
	Update(ctx context.Context, id string, patch domain.ClientPatch, updatedAt time.Time) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}

// IdempotencyPending is the value held by a reserved key whose create has
// not finished yet.
const IdempotencyPending = "pending"

// IdempotencyStore maps Idempotency-Key headers to the client they created.
type IdempotencyStore interface {
	// Reserve claims key when it is unset and reports reserved=true.
	// Otherwise it returns the stored value: a client ID, or
	// IdempotencyPending while another create holds the key.
	Reserve(ctx context.Context, key string) (stored string, reserved bool, err error)
	// Bind records clientID under key, replacing whatever was stored.
	Bind(ctx context.Context, key, clientID string) error
	// Release drops the key after a failed create.
	Release(ctx context.Context, key string) error
}
