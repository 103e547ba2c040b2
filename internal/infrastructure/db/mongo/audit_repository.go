package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tubehub/api/internal/core/domain"
)

const collectionAuthEvents = "auth_events"

// auditRetention bounds how long auth_events documents are kept.
const auditRetention = 90 * 24 * time.Hour

// AuditRepository stores auth events in MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuthEvents)}
}

// InsertEvent appends one entry to the auth audit trail.
func (r *AuditRepository) InsertEvent(ctx context.Context, event domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"type":        string(event.Type),
		"occurredAt":  event.OccurredAt.UTC(),
		"processedAt": time.Now().UTC(),
	}
	if oid, err := primitive.ObjectIDFromHex(event.UserID); err == nil {
		doc["user"] = oid
	}
	if event.Identifier != "" {
		doc["identifier"] = event.Identifier
	}
	if event.Reason != "" {
		doc["reason"] = event.Reason
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// EnsureIndexes indexes events by user and expires them after auditRetention.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "occurredAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "occurredAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(auditRetention.Seconds())),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
