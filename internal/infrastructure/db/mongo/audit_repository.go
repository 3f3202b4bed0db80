package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

const auditCollection = "account_events"

// AuditRepository appends account events to the account_events collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AccountEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"type":         string(event.Type),
		"account_id":   event.AccountID,
		"username":     event.Username,
		"at":           event.At.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.ActorID != 0 {
		doc["actor_id"] = event.ActorID
	}

	_, err := r.coll.InsertOne(ctx, doc)
	return err
}
