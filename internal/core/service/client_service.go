package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/h2eaux/gestion-api/internal/core/domain"
	"github.com/h2eaux/gestion-api/internal/core/ports"
)

// listLimit caps how many records a single List call returns.
const listLimit = 1000

type ClientService struct {
	repo        ports.ClientRepository
	idempotency ports.IdempotencyStore
	logger      zerolog.Logger
}

// NewClientService returns a ClientService. idempotency may be nil, in which
// case Idempotency-Key headers are ignored.
func NewClientService(repo ports.ClientRepository, idempotency ports.IdempotencyStore, logger zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, idempotency: idempotency, logger: logger}
}

// List returns the client records, most recently created first.
func (s *ClientService) List(ctx context.Context) ([]*domain.Client, error) {
	clients, err := s.repo.List(ctx, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// Create stores a new client record. With an idempotency key and a
// configured store, a repeated key returns the record the first request
// created, and a key whose create is still running fails with
// domain.ErrRequestInProgress.
func (s *ClientService) Create(ctx context.Context, input ports.CreateClientInput, idempotencyKey string) (*domain.Client, error) {
	if input.Nom == "" || input.Prenom == "" {
		return nil, fmt.Errorf("%w: nom and prenom are required", domain.ErrValidation)
	}

	bind := false
	if idempotencyKey != "" && s.idempotency != nil {
		existing, claimed, err := s.claim(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		bind = claimed
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	client := &domain.Client{
		ID:            uuid.NewString(),
		Nom:           input.Nom,
		Prenom:        input.Prenom,
		Telephone:     input.Telephone,
		Email:         input.Email,
		Adresse:       input.Adresse,
		Ville:         input.Ville,
		CodePostal:    input.CodePostal,
		TypeChauffage: input.TypeChauffage,
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, client); err != nil {
		s.logger.Error().Err(err).Msg("failed to create client")
		if bind {
			if rerr := s.idempotency.Release(ctx, idempotencyKey); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", idempotencyKey).Msg("failed to release idempotency key")
			}
		}
		return nil, fmt.Errorf("create client: %w", err)
	}

	if bind {
		if err := s.idempotency.Bind(ctx, idempotencyKey, client.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", idempotencyKey).Msg("failed to bind idempotency key")
		}
	}

	s.logger.Info().Str("client_id", client.ID).Msg("client created")
	return client, nil
}

// claim resolves key before an insert. It returns the record to replay, or
// claimed=true when the caller must bind key to the record it creates. A key
// pointing at a deleted record is claimed again. When the store is
// unreachable the create goes ahead unbound.
func (s *ClientService) claim(ctx context.Context, key string) (*domain.Client, bool, error) {
	stored, reserved, err := s.idempotency.Reserve(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency store unavailable, creating without key")
		return nil, false, nil
	}
	if reserved {
		return nil, true, nil
	}
	if stored == ports.IdempotencyPending {
		return nil, false, domain.ErrRequestInProgress
	}

	existing, err := s.repo.FindByID(ctx, stored)
	switch {
	case err == nil:
		s.logger.Info().Str("idempotency_key", key).Str("client_id", stored).Msg("idempotent replay")
		return existing, false, nil
	case errors.Is(err, domain.ErrClientNotFound):
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("idempotent replay: %w", err)
	}
}

func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// Update applies a partial update. updated_at is refreshed even when the
// patch is empty.
func (s *ClientService) Update(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error) {
	if (patch.Nom != nil && *patch.Nom == "") || (patch.Prenom != nil && *patch.Prenom == "") {
		return nil, fmt.Errorf("%w: nom and prenom cannot be empty", domain.ErrValidation)
	}

	c, err := s.repo.Update(ctx, id, patch, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	s.logger.Info().Str("client_id", id).Msg("client updated")
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	s.logger.Info().Str("client_id", id).Msg("client deleted")
	return nil
}
