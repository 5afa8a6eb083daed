package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

func seed(t *testing.T, repo *ProductRepository, products ...models.Product) []primitive.ObjectID {
	t.Helper()
	ids := make([]primitive.ObjectID, 0, len(products))
	for i := range products {
		p := products[i]
		p.CreatedAt = time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Create(context.Background(), &p))
		ids = append(ids, p.ID)
	}
	return ids
}

func TestProductListFilters(t *testing.T) {
	repo := NewProductRepository()
	seed(t, repo,
		models.Product{Name: "Desk Lamp", Description: "warm light", Price: 15, Category: models.CategoryHomeKitchen},
		models.Product{Name: "Novel", Description: "a long story", Price: 8, Category: models.CategoryBooks},
		models.Product{Name: "Headphones", Description: "LAMP-free audio", Price: 120, Category: models.CategoryElectronics},
	)
	ctx := context.Background()

	all, err := repo.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Headphones", all[0].Name)

	found, err := repo.List(ctx, models.ProductFilter{Search: "lamp"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	lo, hi := 10.0, 100.0
	found, err = repo.List(ctx, models.ProductFilter{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Desk Lamp", found[0].Name)

	found, err = repo.List(ctx, models.ProductFilter{Category: models.CategoryBooks})
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = repo.List(ctx, models.ProductFilter{Sort: models.SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 15, 120}, []float64{found[0].Price, found[1].Price, found[2].Price})
}

func TestProductReadsAreCopies(t *testing.T) {
	repo := NewProductRepository()
	ids := seed(t, repo, models.Product{Name: "Lamp", Images: []string{"a.png"}, Stock: 2})

	p, err := repo.FindByID(context.Background(), ids[0])
	require.NoError(t, err)
	p.Images[0] = "mutated.png"
	p.Stock = 99

	again, err := repo.FindByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "a.png", again.Images[0])
	assert.Equal(t, 2, again.Stock)
}

func TestDecrementStock(t *testing.T) {
	repo := NewProductRepository()
	ids := seed(t, repo, models.Product{Name: "Lamp", Stock: 1})
	ctx := context.Background()

	ok, err := repo.DecrementStock(ctx, ids[0], 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DecrementStock(ctx, ids[0], 1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.DecrementStock(ctx, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, apperror.ErrRecordNotFound)

	require.NoError(t, repo.IncrementStock(ctx, ids[0], 3))
	p, _ := repo.FindByID(ctx, ids[0])
	assert.Equal(t, 3, p.Stock)
}

func TestDecrementStockConcurrent(t *testing.T) {
	repo := NewProductRepository()
	ids := seed(t, repo, models.Product{Name: "Lamp", Stock: 10})

	var g errgroup.Group
	taken := make(chan struct{}, 50)
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			ok, err := repo.DecrementStock(context.Background(), ids[0], 1)
			if ok {
				taken <- struct{}{}
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	close(taken)

	assert.Len(t, taken, 10)
	p, _ := repo.FindByID(context.Background(), ids[0])
	assert.Equal(t, 0, p.Stock)
}

func TestCartRepository(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()
	user := primitive.NewObjectID()

	_, err := repo.FindByUser(ctx, user)
	assert.ErrorIs(t, err, apperror.ErrRecordNotFound)

	cart := models.NewCart(user)
	cart.Add(models.CartItem{ProductID: primitive.NewObjectID(), Price: 10, Quantity: 2})
	require.NoError(t, repo.Save(ctx, cart))
	id, created := cart.ID, cart.CreatedAt
	assert.False(t, id.IsZero())

	cart.Clear()
	require.NoError(t, repo.Save(ctx, cart))
	assert.Equal(t, id, cart.ID)
	assert.Equal(t, created, cart.CreatedAt)

	stored, err := repo.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
	assert.Zero(t, stored.TotalPrice)
}

func TestOrderRepository(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	user := primitive.NewObjectID()

	first := &models.Order{UserID: user, OrderStatus: models.StatusProcessing}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Order{UserID: user, OrderStatus: models.StatusProcessing}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &models.Order{UserID: primitive.NewObjectID()}))

	mine, err := repo.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 3, repo.Count())

	first.OrderStatus = models.StatusShipped
	require.NoError(t, repo.Update(ctx, first, models.StatusProcessing))
	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.OrderStatus)

	stale := *first
	stale.OrderStatus = models.StatusCancelled
	err = repo.Update(ctx, &stale, models.StatusProcessing)
	assert.ErrorIs(t, err, apperror.ErrStaleStatus)
	got, err = repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.OrderStatus)

	err = repo.Update(ctx, &models.Order{ID: primitive.NewObjectID()}, models.StatusProcessing)
	assert.ErrorIs(t, err, apperror.ErrRecordNotFound)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "Ana", Email: "ana@example.com"}))
	err := repo.Create(ctx, &models.User{Name: "Ana 2", Email: "ANA@example.com"})

	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)

	u, err := repo.FindByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
}

func TestTokenBlacklistExpiry(t *testing.T) {
	blacklist := NewTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.Add(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, blacklist.Add(ctx, "expired", time.Now().Add(-time.Minute)))

	ok, _ := blacklist.Contains(ctx, "live")
	assert.True(t, ok)
	ok, _ = blacklist.Contains(ctx, "expired")
	assert.False(t, ok)
	ok, _ = blacklist.Contains(ctx, "unknown")
	assert.False(t, ok)
}

func TestAuditLog(t *testing.T) {
	audit := NewAuditLog()
	ctx := context.Background()

	require.NoError(t, audit.Record(ctx, &models.AuditEntry{Service: "order", Action: "create", EntityID: "o1"}))
	require.NoError(t, audit.Record(ctx, &models.AuditEntry{Service: "order", Action: "status", EntityID: "o1"}))
	require.NoError(t, audit.Record(ctx, &models.AuditEntry{Service: "order", Action: "create", EntityID: "o2"}))

	entries, err := audit.Entries(ctx, "o1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "status", entries[0].Action)
	assert.Equal(t, "create", entries[1].Action)

	entries, err = audit.Entries(ctx, "o1", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "status", entries[0].Action)
}
