package repository

import (
	"context"
	"time"

	"github.com/jayansh1208/marketly/database"
	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{collection: db.Collection(database.CartCollection)}
}

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&cart); err != nil {
		return nil, notFound(err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	update := bson.M{
		"$set": bson.M{
			"items":      cart.Items,
			"totalPrice": cart.TotalPrice,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Cart
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"user": cart.UserID}, update, opts).Decode(&saved); err != nil {
		return err
	}
	cart.ID = saved.ID
	cart.CreatedAt = saved.CreatedAt
	cart.UpdatedAt = saved.UpdatedAt
	return nil
}
