package services

import (
	"context"
	"testing"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCartFixture(t *testing.T) (*CartService, *memory.ProductRepository, *models.Product, *models.Product) {
	t.Helper()
	products := memory.NewProductRepository()
	lamp := &models.Product{Name: "Desk Lamp", Price: 10, Stock: 1, Images: []string{"lamp.png"}}
	mug := &models.Product{Name: "Mug", Price: 25, Stock: 0}
	require.NoError(t, products.Create(context.Background(), lamp))
	require.NoError(t, products.Create(context.Background(), mug))
	return NewCartService(products, memory.NewCartRepository()), products, lamp, mug
}

func TestCartTotalsFollowEveryMutation(t *testing.T) {
	svc, _, lamp, mug := newCartFixture(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	cart, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart, err = svc.AddItem(ctx, user, lamp.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cart.TotalPrice)

	// No stock check at cart time: the mug is out of stock.
	cart, err = svc.AddItem(ctx, user, mug.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 45.0, cart.TotalPrice)

	cart, err = svc.AddItem(ctx, user, lamp.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 55.0, cart.TotalPrice)
	assert.Equal(t, 4, cart.Count())

	cart, err = svc.SetQuantity(ctx, user, mug.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 130.0, cart.TotalPrice)

	cart, err = svc.SetQuantity(ctx, user, mug.ID, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 30.0, cart.TotalPrice)

	cart, err = svc.RemoveItem(ctx, user, lamp.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalPrice)
}

func TestCartCapturesPriceAtAddTime(t *testing.T) {
	svc, products, lamp, _ := newCartFixture(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	_, err := svc.AddItem(ctx, user, lamp.ID, 1)
	require.NoError(t, err)

	lamp.Price = 12
	require.NoError(t, products.Update(ctx, lamp))

	cart, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cart.Items[0].Price)
	assert.Equal(t, "lamp.png", cart.Items[0].Image)

	cart, err = svc.AddItem(ctx, user, lamp.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 12.0, cart.Items[0].Price)
	assert.Equal(t, 24.0, cart.TotalPrice)
}

func TestCartErrors(t *testing.T) {
	svc, _, lamp, _ := newCartFixture(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	_, err := svc.AddItem(ctx, user, lamp.ID, 0)
	assert.Equal(t, "quantity", apperror.Fields(err)[0].Field)

	var nf *apperror.NotFoundError
	_, err = svc.AddItem(ctx, user, primitive.NewObjectID(), 1)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Product", nf.Resource)

	_, err = svc.SetQuantity(ctx, user, lamp.ID, 2)
	assert.ErrorAs(t, err, &nf)
	_, err = svc.RemoveItem(ctx, user, lamp.ID)
	assert.ErrorAs(t, err, &nf)
}

func TestCartClear(t *testing.T) {
	svc, _, lamp, mug := newCartFixture(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	_, err := svc.AddItem(ctx, user, lamp.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user, mug.ID, 2)
	require.NoError(t, err)

	cart, err := svc.Clear(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalPrice)
	assert.False(t, cart.ID.IsZero())
}
