package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartService mutates a user's cart. Stock is not checked here; it is only
// reserved when the order is placed.
type CartService struct {
	products ProductRepository
	carts    CartRepository
}

func NewCartService(products ProductRepository, carts CartRepository) *CartService {
	return &CartService{products: products, carts: carts}
}

// load returns the stored cart or a fresh, unsaved one.
func (s *CartService) load(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, apperror.ErrRecordNotFound) {
		return models.NewCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	cart.Recalculate()
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return s.load(ctx, userID)
}

// AddItem captures the product's current price, name and image into the line.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperror.NewValidation("quantity", "Quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "Product", productID)
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Add(models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.PrimaryImage(),
		Price:     product.Price,
		Quantity:  quantity,
	})
	return s.save(ctx, cart)
}

// SetQuantity removes the line when quantity is zero or less.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cart.SetQuantity(productID, quantity) {
		return nil, apperror.NotFound("Item", productID.Hex())
	}
	return s.save(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productID) {
		return nil, apperror.NotFound("Item", productID.Hex())
	}
	return s.save(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	return s.save(ctx, cart)
}
