package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	counters map[string]int64
	fail     error
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}, counters: map[string]int64{}}
}

func (s *mapStore) GetJSON(ctx context.Context, key string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	raw, ok := s.data[key]
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *mapStore) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *mapStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return s.fail
}

func (s *mapStore) Counter(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key], s.fail
}

func (s *mapStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], s.fail
}

func setup(t *testing.T) (*ProductRepository, *memory.ProductRepository, *mapStore, *models.Product) {
	t.Helper()
	inner := memory.NewProductRepository()
	store := newMapStore()
	product := &models.Product{Name: "Lamp", Price: 15, Stock: 4, Category: models.CategoryHomeKitchen}
	require.NoError(t, inner.Create(context.Background(), product))
	return NewProductRepository(inner, store, time.Minute, zap.NewNop()), inner, store, product
}

func TestFindByIDCachesAndInvalidates(t *testing.T) {
	repo, inner, store, product := setup(t)
	ctx := context.Background()

	got, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
	assert.Contains(t, store.data, productKey(product.ID))

	// A write behind the cache's back is not seen until invalidation.
	_, err = inner.DecrementStock(ctx, product.ID, 1)
	require.NoError(t, err)
	got, _ = repo.FindByID(ctx, product.ID)
	assert.Equal(t, 4, got.Stock)

	ok, err := repo.DecrementStock(ctx, product.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, store.data, productKey(product.ID))

	got, _ = repo.FindByID(ctx, product.ID)
	assert.Equal(t, 2, got.Stock)
}

func TestListCacheRetiredByWrites(t *testing.T) {
	repo, _, store, _ := setup(t)
	ctx := context.Background()

	list, err := repo.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, store.data, listKey(0, models.ProductFilter{}))

	require.NoError(t, repo.Create(ctx, &models.Product{Name: "Desk", Price: 90, Category: models.CategoryOther}))
	assert.Equal(t, int64(1), store.counters[listVersionKey])

	list, err = repo.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStoreFailureFallsThrough(t *testing.T) {
	repo, _, store, product := setup(t)
	store.fail = errors.New("connection refused")
	ctx := context.Background()

	got, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)

	list, err := repo.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	ok, err := repo.DecrementStock(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListKeyDependsOnFilter(t *testing.T) {
	lo := 5.0
	a := listKey(3, models.ProductFilter{Search: "lamp"})
	b := listKey(3, models.ProductFilter{Search: "lamp", MinPrice: &lo})
	c := listKey(4, models.ProductFilter{Search: "lamp"})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, listKey(3, models.ProductFilter{Search: "lamp"}))
}
