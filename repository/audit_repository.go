package repository

import (
	"context"
	"time"

	"github.com/jayansh1208/marketly/database"
	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditRepository keeps an append-only trail of order changes, read back per
// entity by the order history endpoint.
type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{collection: db.Collection(database.AuditCollection)}
}

func (a *AuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	entry.CreatedAt = time.Now()
	_, err := a.collection.InsertOne(ctx, entry)
	return err
}

// Entries returns up to limit entries for one entity, newest first.
func (a *AuditRepository) Entries(ctx context.Context, entityID string, limit int64) ([]models.AuditEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := a.collection.Find(ctx, bson.M{"entityId": entityID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.AuditEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
