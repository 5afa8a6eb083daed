// Package cache puts a cache-aside layer in front of the product catalog.
// Cache failures are logged and never fail the request.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const listVersionKey = "products:version"

func productKey(id primitive.ObjectID) string {
	return fmt.Sprintf("product:%s", id.Hex())
}

// listKey embeds the list generation, so bumping the generation retires every
// cached listing at once.
func listKey(version int64, filter models.ProductFilter) string {
	raw, _ := json.Marshal(filter)
	sum := sha1.Sum(raw)
	return fmt.Sprintf("products:list:%d:%s", version, hex.EncodeToString(sum[:8]))
}

type ProductRepository struct {
	services.ProductRepository
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewProductRepository(inner services.ProductRepository, store Store, ttl time.Duration, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		ProductRepository: inner,
		store:             store,
		ttl:               ttl,
		logger:            logger.Named("cache"),
	}
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	key := productKey(id)

	var cached models.Product
	err := r.store.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	product, err := r.ProductRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.store.SetJSON(ctx, key, product, r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return product, nil
}

func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	version, err := r.store.Counter(ctx, listVersionKey)
	if err != nil {
		r.logger.Warn("cache read failed", zap.String("key", listVersionKey), zap.Error(err))
		return r.ProductRepository.List(ctx, filter)
	}
	key := listKey(version, filter)

	var cached []models.Product
	err = r.store.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	products, err := r.ProductRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := r.store.SetJSON(ctx, key, products, r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return products, nil
}

func (r *ProductRepository) invalidate(ctx context.Context, id primitive.ObjectID) {
	if !id.IsZero() {
		if err := r.store.Del(ctx, productKey(id)); err != nil {
			r.logger.Warn("cache invalidation failed", zap.String("product", id.Hex()), zap.Error(err))
		}
	}
	if _, err := r.store.Incr(ctx, listVersionKey); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("key", listVersionKey), zap.Error(err))
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.ProductRepository.Create(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, primitive.NilObjectID)
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	err := r.ProductRepository.Update(ctx, product)
	r.invalidate(ctx, product.ID)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := r.ProductRepository.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error) {
	ok, err := r.ProductRepository.DecrementStock(ctx, id, quantity)
	if ok {
		r.invalidate(ctx, id)
	}
	return ok, err
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	err := r.ProductRepository.IncrementStock(ctx, id, quantity)
	r.invalidate(ctx, id)
	return err
}
