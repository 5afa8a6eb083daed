// Package client talks to the storefront REST API and mirrors the signed-in
// user's session and cart.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []apperror.FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success      bool                  `json:"success"`
	Data         json.RawMessage       `json:"data"`
	Message      string                `json:"message"`
	Errors       []apperror.FieldError `json:"errors"`
	ClientSecret string                `json:"clientSecret"`
}

type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type OrderRequest struct {
	OrderItems      []models.OrderItem     `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
	TotalPrice      *float64               `json:"totalPrice,omitempty"`
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	AmountCents  int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for the API mounted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return &env, nil
}

func (c *Client) session(ctx context.Context, path string, body any) (*Session, error) {
	var s Session
	if _, err := c.do(ctx, http.MethodPost, path, body, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return c.session(ctx, "/auth/register", map[string]string{"name": name, "email": email, "password": password})
}

// Login keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.session(ctx, "/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Products(ctx context.Context, query url.Values) ([]models.Product, error) {
	path := "/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var products []models.Product
	if _, err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if _, err := c.do(ctx, http.MethodGet, "/products/"+id.Hex(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var p models.Product
	if _, err := c.do(ctx, http.MethodPost, "/products", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id primitive.ObjectID, in models.ProductInput) (*models.Product, error) {
	var p models.Product
	if _, err := c.do(ctx, http.MethodPut, "/products/"+id.Hex(), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+id.Hex(), nil, nil)
	return err
}

func (c *Client) cart(ctx context.Context, method, path string, body any) (*models.Cart, error) {
	var cart models.Cart
	if _, err := c.do(ctx, method, path, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

type cartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) Cart(ctx context.Context) (*models.Cart, error) {
	return c.cart(ctx, http.MethodGet, "/cart", nil)
}

func (c *Client) AddToCart(ctx context.Context, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	return c.cart(ctx, http.MethodPost, "/cart/add", cartLine{ProductID: productID.Hex(), Quantity: quantity})
}

func (c *Client) UpdateCartItem(ctx context.Context, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	return c.cart(ctx, http.MethodPut, "/cart/update", cartLine{ProductID: productID.Hex(), Quantity: quantity})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID primitive.ObjectID) (*models.Cart, error) {
	return c.cart(ctx, http.MethodDelete, "/cart/remove/"+productID.Hex(), nil)
}

func (c *Client) ClearCart(ctx context.Context) (*models.Cart, error) {
	return c.cart(ctx, http.MethodDelete, "/cart/clear", nil)
}

func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (*models.Order, error) {
	var o models.Order
	if _, err := c.do(ctx, http.MethodPost, "/orders", in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) orders(ctx context.Context, path string) ([]models.Order, error) {
	var orders []models.Order
	if _, err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	return c.orders(ctx, "/orders/myorders")
}

// AllOrders lists every order with its customer attached. Admin only.
func (c *Client) AllOrders(ctx context.Context) ([]models.OrderDetails, error) {
	var orders []models.OrderDetails
	if _, err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Order(ctx context.Context, id primitive.ObjectID) (*models.OrderDetails, error) {
	var o models.OrderDetails
	if _, err := c.do(ctx, http.MethodGet, "/orders/"+id.Hex(), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// OrderHistory returns the audit trail of one order, newest first. Admin only.
func (c *Client) OrderHistory(ctx context.Context, id primitive.ObjectID) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	if _, err := c.do(ctx, http.MethodGet, "/orders/"+id.Hex()+"/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	var o models.Order
	body := map[string]models.OrderStatus{"orderStatus": status}
	if _, err := c.do(ctx, http.MethodPut, "/orders/"+id.Hex()+"/status", body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CancelOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if _, err := c.do(ctx, http.MethodPut, "/orders/"+id.Hex()+"/cancel", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, amount float64) (*PaymentIntent, error) {
	var intent PaymentIntent
	env, err := c.do(ctx, http.MethodPost, "/payment/create-payment-intent", map[string]float64{"amount": amount}, &intent)
	if err != nil {
		return nil, err
	}
	if intent.ClientSecret == "" {
		intent.ClientSecret = env.ClientSecret
	}
	return &intent, nil
}
