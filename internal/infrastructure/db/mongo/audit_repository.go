package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/h2eaux/gestion-api/internal/core/domain"
	"github.com/h2eaux/gestion-api/internal/core/ports"
)

const collectionAuthEvents = "auth_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertEvent persists a security event to the auth_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.Collection(collectionAuthEvents).InsertOne(ctx, eventDocument(event, time.Now().UTC()))
	return err
}

// eventDocument flattens event into its stored form. Empty identifiers are
// left out rather than stored as "".
func eventDocument(event *domain.AuthEvent, recordedAt time.Time) bson.M {
	doc := bson.M{
		"kind":        string(event.Kind),
		"username":    event.Username,
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": recordedAt,
	}
	if event.UserID != "" {
		doc["user_id"] = event.UserID
	}
	if event.ActorID != "" {
		doc["actor_id"] = event.ActorID
	}
	if event.Capability != "" {
		doc["capability"] = event.Capability
	}
	return doc
}
