package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartRepository struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]models.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[primitive.ObjectID]models.Cart)}
}

func cloneCart(c models.Cart) *models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c
}

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[userID]
	if !ok {
		return nil, apperror.ErrRecordNotFound
	}
	return cloneCart(c), nil
}

func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.carts[cart.UserID]; ok {
		cart.ID = existing.ID
		cart.CreatedAt = existing.CreatedAt
	} else {
		if cart.ID.IsZero() {
			cart.ID = primitive.NewObjectID()
		}
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	r.carts[cart.UserID] = *cloneCart(*cart)
	return nil
}
