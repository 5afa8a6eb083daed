package services

import (
	"context"
	"time"

	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repositories return apperror.ErrRecordNotFound (possibly wrapped) when no
// document matches.

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DecrementStock subtracts quantity only if the current stock covers it
	// and reports whether the decrement happened.
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error)
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// Save upserts the cart keyed by its user.
	Save(ctx context.Context, cart *models.Cart) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	// Update applies only while the stored status equals expected and
	// returns apperror.ErrStaleStatus otherwise.
	Update(ctx context.Context, order *models.Order, expected models.OrderStatus) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenBlacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

type AuditLog interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	// Entries returns up to limit entries for one entity, newest first.
	Entries(ctx context.Context, entityID string, limit int64) ([]models.AuditEntry, error)
}

// Notifier delivers order confirmations. Implementations must not block on
// delivery.
type Notifier interface {
	OrderPlaced(order models.Order, recipient models.User)
}
