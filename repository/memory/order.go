package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]models.Order
	// FailCreate, when set, is returned by Create. Tests use it to exercise
	// persistence failures.
	FailCreate error
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[primitive.ObjectID]models.Order)}
}

func cloneOrder(o models.Order) *models.Order {
	o.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	if o.PaymentResult != nil {
		result := *o.PaymentResult
		o.PaymentResult = &result
	}
	if o.PaidAt != nil {
		at := *o.PaidAt
		o.PaidAt = &at
	}
	if o.DeliveredAt != nil {
		at := *o.DeliveredAt
		o.DeliveredAt = &at
	}
	return &o
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate != nil {
		return r.FailCreate
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.orders[order.ID] = *cloneOrder(*order)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, apperror.ErrRecordNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.collect(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.collect(func(models.Order) bool { return true }), nil
}

func (r *OrderRepository) collect(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *OrderRepository) Update(ctx context.Context, order *models.Order, expected models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return apperror.ErrRecordNotFound
	}
	if stored.OrderStatus != expected {
		return apperror.ErrStaleStatus
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *cloneOrder(*order)
	return nil
}

func (r *OrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
