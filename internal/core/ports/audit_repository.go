package ports

import (
	"context"

	"github.com/h2eaux/gestion-api/internal/core/domain"
)

// AuditRepository persists the security audit trail.
type AuditRepository interface {
	// InsertEvent appends an event to the auth_events collection.
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
