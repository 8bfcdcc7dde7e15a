package ports

import (
	"context"

	"github.com/h2eaux/gestion-api/internal/core/domain"
)

// CreateClientInput carries the fields accepted when creating a client.
type CreateClientInput struct {
	Nom           string
	Prenom        string
	Telephone     string
	Email         string
	Adresse       string
	Ville         string
	CodePostal    string
	TypeChauffage string
	Notes         string
}

// ClientService defines use-case operations over client records.
type ClientService interface {
	List(ctx context.Context) ([]*domain.Client, error)
	Create(ctx context.Context, input CreateClientInput, idempotencyKey string) (*domain.Client, error)
	Get(ctx context.Context, id string) (*domain.Client, error)
	Update(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}
