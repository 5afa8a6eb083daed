package repository

import (
	"context"
	"time"

	"github.com/jayansh1208/marketly/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenBlacklist stores logged-out tokens until they expire. The TTL index on
// expiresAt removes them afterwards.
type TokenBlacklist struct {
	collection *mongo.Collection
}

func NewTokenBlacklist(db *mongo.Database) *TokenBlacklist {
	return &TokenBlacklist{collection: db.Collection(database.BlacklistCollection)}
}

func (b *TokenBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := b.collection.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"token": token, "expiresAt": expiresAt}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.collection.CountDocuments(ctx, bson.M{
		"token":     token,
		"expiresAt": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
