package client

import (
	"context"
	"errors"
	"sync"

	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotAuthenticated = errors.New("client: not signed in")
	ErrEmptyCart        = errors.New("client: cart is empty")
)

// Store mirrors the signed-in user and their cart. Every cart mutation
// replaces the local cart with the snapshot the server returns.
type Store struct {
	client *Client

	mu   sync.RWMutex
	user *models.User
	cart models.Cart
}

func NewStore(c *Client) *Store {
	return &Store{client: c, cart: emptyCart()}
}

func emptyCart() models.Cart {
	return models.Cart{Items: []models.CartItem{}}
}

func (s *Store) setCart(cart *models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart == nil {
		s.cart = emptyCart()
		return
	}
	s.cart = *cart
	if s.cart.Items == nil {
		s.cart.Items = []models.CartItem{}
	}
}

func (s *Store) signIn(ctx context.Context, session *Session) {
	s.mu.Lock()
	user := session.User
	s.user = &user
	s.mu.Unlock()
	// a failed fetch leaves the mirror empty
	_ = s.RefreshCart(ctx)
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	session, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.signIn(ctx, session)
	return nil
}

func (s *Store) Register(ctx context.Context, name, email, password string) error {
	session, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	s.signIn(ctx, session)
	return nil
}

// Restore resumes a session from the client's current token.
func (s *Store) Restore(ctx context.Context) error {
	user, err := s.client.Me(ctx)
	if err != nil {
		s.mu.Lock()
		s.user = nil
		s.cart = emptyCart()
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return s.RefreshCart(ctx)
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = nil
	s.cart = emptyCart()
	s.mu.Unlock()
	return nil
}

func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *Store) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin()
}

// RefreshCart reloads the cart. On failure the mirror is reset to empty.
func (s *Store) RefreshCart(ctx context.Context) error {
	cart, err := s.client.Cart(ctx)
	if err != nil {
		s.setCart(nil)
		return err
	}
	s.setCart(cart)
	return nil
}

func (s *Store) mutate(cart *models.Cart, err error) error {
	if err != nil {
		return err
	}
	s.setCart(cart)
	return nil
}

func (s *Store) AddToCart(ctx context.Context, productID primitive.ObjectID, quantity int) error {
	return s.mutate(s.client.AddToCart(ctx, productID, quantity))
}

func (s *Store) UpdateQuantity(ctx context.Context, productID primitive.ObjectID, quantity int) error {
	return s.mutate(s.client.UpdateCartItem(ctx, productID, quantity))
}

func (s *Store) RemoveItem(ctx context.Context, productID primitive.ObjectID) error {
	return s.mutate(s.client.RemoveFromCart(ctx, productID))
}

func (s *Store) ClearCart(ctx context.Context) error {
	return s.mutate(s.client.ClearCart(ctx))
}

// Cart returns a copy of the mirrored cart.
func (s *Store) Cart() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart := s.cart
	cart.Items = append([]models.CartItem(nil), s.cart.Items...)
	return cart
}

func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Count()
}

func (s *Store) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.TotalPrice
}

// Checkout places an order for the mirrored cart. The server clears its cart
// on success, so the local one is reset to match.
func (s *Store) Checkout(ctx context.Context, address models.ShippingAddress, method models.PaymentMethod) (*models.Order, error) {
	if !s.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	cart := s.Cart()
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Image:     line.Image,
		})
	}
	total := cart.TotalPrice

	order, err := s.client.CreateOrder(ctx, OrderRequest{
		OrderItems:      items,
		ShippingAddress: address,
		PaymentMethod:   method,
		TotalPrice:      &total,
	})
	if err != nil {
		return nil, err
	}
	s.setCart(nil)
	return order, nil
}
