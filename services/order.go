package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type OrderOptions struct {
	// CompensateStock restores stock already taken by earlier lines when a
	// later line or the order insert fails.
	CompensateStock bool
	// StrictStatus rejects status changes outside the lifecycle edges.
	StrictStatus bool
}

type OrderService struct {
	products ProductRepository
	carts    CartRepository
	orders   OrderRepository
	users    UserRepository
	notifier Notifier
	audit    AuditLog
	logger   *zap.Logger
	opts     OrderOptions
	now      func() time.Time
}

func NewOrderService(
	products ProductRepository,
	carts CartRepository,
	orders OrderRepository,
	users UserRepository,
	notifier Notifier,
	audit AuditLog,
	logger *zap.Logger,
	opts OrderOptions,
) *OrderService {
	return &OrderService{
		products: products,
		carts:    carts,
		orders:   orders,
		users:    users,
		notifier: notifier,
		audit:    audit,
		logger:   logger.Named("order"),
		opts:     opts,
		now:      time.Now,
	}
}

type PlaceOrderInput struct {
	UserID          primitive.ObjectID
	Items           []models.OrderItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   models.PaymentMethod
	IsPaid          *bool
	PaidAt          *time.Time
	TotalPrice      *float64
}

func validateItems(items []models.OrderItem) error {
	var fields []apperror.FieldError
	for i, item := range items {
		prefix := "orderItems[" + strconv.Itoa(i) + "]"
		if item.ProductID.IsZero() {
			fields = append(fields, apperror.FieldError{Field: prefix + ".product", Message: "Product is required"})
		}
		if item.Quantity < 1 {
			fields = append(fields, apperror.FieldError{Field: prefix + ".quantity", Message: "Quantity must be at least 1"})
		}
		if item.Price < 0 {
			fields = append(fields, apperror.FieldError{Field: prefix + ".price", Message: "Price cannot be negative"})
		}
	}
	if len(fields) > 0 {
		return &apperror.ValidationError{Fields: fields}
	}
	return nil
}

// PlaceOrder reserves stock line by line, persists the order and clears the
// cart. Each line is taken with a conditional decrement, so stock never goes
// negative. The confirmation is handed off to the notifier and never fails
// the order.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperror.EmptyOrderError{}
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	address := in.ShippingAddress.Normalize()
	if err := validation.Struct(address); err != nil {
		return nil, validation.Prefix(err, "shippingAddress")
	}
	payment := in.PaymentMethod
	if payment.IsZero() {
		payment = models.Cod()
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			s.releaseStock(ctx, items)
			return nil, notFound(err, "Product", line.ProductID)
		}

		ok, err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			s.releaseStock(ctx, items)
			return nil, notFound(err, "Product", line.ProductID)
		}
		if !ok {
			s.releaseStock(ctx, items)
			return nil, &apperror.InsufficientStockError{ProductID: product.ID.Hex(), ProductName: product.Name}
		}

		item := line
		if item.Name == "" {
			item.Name = product.Name
		}
		if item.Image == "" {
			item.Image = product.PrimaryImage()
		}
		items = append(items, item)
	}

	now := s.now()
	order := &models.Order{
		UserID:          in.UserID,
		OrderItems:      items,
		ShippingAddress: address,
		PaymentMethod:   payment.Kind,
		PaymentResult:   payment.Result(),
		TotalPrice:      models.SumLines(items, func(i models.OrderItem) (float64, int) { return i.Price, i.Quantity }),
		OrderStatus:     models.StatusProcessing,
	}
	switch {
	case in.IsPaid != nil:
		if *in.IsPaid {
			at := now
			if in.PaidAt != nil {
				at = *in.PaidAt
			}
			order.MarkPaid(at)
		}
	case payment.Kind.ChargedUpfront():
		order.MarkPaid(now)
	}
	if in.TotalPrice != nil && math.Abs(*in.TotalPrice-order.TotalPrice) >= 0.005 {
		s.logger.Warn("client total differs from computed total",
			zap.String("user_id", in.UserID.Hex()),
			zap.Float64("client_total", *in.TotalPrice),
			zap.Float64("total", order.TotalPrice))
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.releaseStock(ctx, items)
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.clearCart(ctx, in.UserID)
	s.record(ctx, "order.created", order.ID, map[string]any{
		"user":          in.UserID.Hex(),
		"totalPrice":    order.TotalPrice,
		"paymentMethod": string(order.PaymentMethod),
		"items":         len(order.OrderItems),
	})
	s.notify(ctx, *order)

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", in.UserID.Hex()),
		zap.Float64("total", order.TotalPrice),
		zap.Bool("paid", order.IsPaid))
	return order, nil
}

// releaseStock gives back stock taken for lines of a failed placement.
func (s *OrderService) releaseStock(ctx context.Context, taken []models.OrderItem) {
	if len(taken) == 0 {
		return
	}
	if !s.opts.CompensateStock {
		s.logger.Warn("order failed after stock was taken; compensation disabled", zap.Int("lines", len(taken)))
		return
	}
	for _, item := range taken {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to restore stock",
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
			continue
		}
		s.logger.Info("stock restored",
			zap.String("product_id", item.ProductID.Hex()),
			zap.Int("quantity", item.Quantity))
	}
}

func (s *OrderService) clearCart(ctx context.Context, userID primitive.ObjectID) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, apperror.ErrRecordNotFound) {
		return
	}
	if err == nil {
		cart.Clear()
		err = s.carts.Save(ctx, cart)
	}
	if err != nil {
		s.logger.Error("failed to clear cart after order", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
}

func (s *OrderService) notify(ctx context.Context, order models.Order) {
	if s.notifier == nil {
		return
	}
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("order confirmation skipped",
			zap.String("order_id", order.ID.Hex()),
			zap.Error(&apperror.UpstreamNotificationError{Channel: "lookup", Err: err}))
		return
	}
	s.notifier.OrderPlaced(order, *user)
}

func (s *OrderService) record(ctx context.Context, action string, orderID primitive.ObjectID, data map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditEntry{Service: "order", Action: action, EntityID: orderID.Hex(), Data: data}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

// statusAttempts bounds how often a status change re-reads the order after a
// concurrent write.
const statusAttempts = 2

// historyLimit caps the audit entries returned for one order.
const historyLimit = 50

// transition applies change to a fresh read of the order and writes it back
// only while the stored status still equals the one read. A lost race is
// retried once on the new state; after that the caller gets a TransitionError
// naming the status that won.
func (s *OrderService) transition(
	ctx context.Context,
	id primitive.ObjectID,
	to models.OrderStatus,
	change func(order *models.Order) error,
) (*models.Order, models.OrderStatus, error) {
	for attempt := 0; attempt < statusAttempts; attempt++ {
		order, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return nil, "", notFound(err, "Order", id)
		}
		previous := order.OrderStatus
		if err := change(order); err != nil {
			return nil, previous, err
		}

		err = s.orders.Update(ctx, order, previous)
		if err == nil {
			return order, previous, nil
		}
		if !errors.Is(err, apperror.ErrStaleStatus) {
			return nil, previous, notFound(err, "Order", id)
		}
		s.logger.Warn("order status changed concurrently",
			zap.String("order_id", id.Hex()),
			zap.String("read", string(previous)),
			zap.String("to", string(to)),
			zap.Int("attempt", attempt+1))
	}

	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, "", notFound(err, "Order", id)
	}
	return nil, current.OrderStatus, &apperror.TransitionError{From: string(current.OrderStatus), To: string(to)}
}

// UpdateStatus moves an order through its lifecycle. Delivering a cash on
// delivery order marks it paid.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperror.NewValidation("orderStatus", "Invalid order status")
	}

	order, previous, err := s.transition(ctx, id, status, func(order *models.Order) error {
		from := order.OrderStatus
		if s.opts.StrictStatus && !from.CanTransitionTo(status) {
			return &apperror.TransitionError{From: string(from), To: string(status)}
		}
		if from.Terminal() && from != status {
			s.logger.Warn("overwriting terminal order status",
				zap.String("order_id", id.Hex()),
				zap.String("from", string(from)),
				zap.String("to", string(status)))
		}

		order.OrderStatus = status
		if status == models.StatusDelivered {
			now := s.now()
			order.DeliveredAt = &now
			if !order.IsPaid && order.PaymentMethod == models.PaymentCOD {
				order.MarkPaid(now)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "order.status_updated", order.ID, map[string]any{
		"from": string(previous),
		"to":   string(status),
	})
	s.logger.Info("order status updated",
		zap.String("order_id", id.Hex()),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))
	return order, nil
}

// Cancel lets the owner (or an admin) cancel an order that has not shipped.
func (s *OrderService) Cancel(ctx context.Context, id primitive.ObjectID, principal models.Principal) (*models.Order, error) {
	order, _, err := s.transition(ctx, id, models.StatusCancelled, func(order *models.Order) error {
		if !order.OwnedBy(principal.UserID) && !principal.IsAdmin() {
			return &apperror.AuthorizationError{Message: "Not authorized to cancel this order"}
		}
		if order.OrderStatus != models.StatusProcessing {
			return &apperror.TransitionError{From: string(order.OrderStatus), To: string(models.StatusCancelled)}
		}
		order.OrderStatus = models.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "order.cancelled", order.ID, map[string]any{"by": principal.UserID.Hex()})
	return order, nil
}

// GetOrder returns the order with its customer's name and email attached.
func (s *OrderService) GetOrder(ctx context.Context, id primitive.ObjectID, principal models.Principal) (*models.OrderDetails, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Order", id)
	}
	if !order.OwnedBy(principal.UserID) && !principal.IsAdmin() {
		return nil, &apperror.AuthorizationError{Message: "Not authorized to view this order"}
	}
	details, err := s.withCustomers(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *OrderService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

// ListAll returns every order, newest first, each with its customer attached.
func (s *OrderService) ListAll(ctx context.Context) ([]models.OrderDetails, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.withCustomers(ctx, orders)
}

// withCustomers resolves each order's user once per distinct id. Orders whose
// user was deleted keep a nil customer.
func (s *OrderService) withCustomers(ctx context.Context, orders []models.Order) ([]models.OrderDetails, error) {
	customers := make(map[primitive.ObjectID]*models.OrderCustomer)
	out := make([]models.OrderDetails, 0, len(orders))
	for _, order := range orders {
		customer, seen := customers[order.UserID]
		if !seen {
			user, err := s.users.FindByID(ctx, order.UserID)
			switch {
			case err == nil:
				customer = &models.OrderCustomer{ID: user.ID, Name: user.Name, Email: user.Email}
			case errors.Is(err, apperror.ErrRecordNotFound):
				customer = nil
			default:
				return nil, err
			}
			customers[order.UserID] = customer
		}
		out = append(out, models.OrderDetails{Order: order, User: customer})
	}
	return out, nil
}

// History returns the audit trail of one order, newest first.
func (s *OrderService) History(ctx context.Context, id primitive.ObjectID) ([]models.AuditEntry, error) {
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return nil, notFound(err, "Order", id)
	}
	if s.audit == nil {
		return []models.AuditEntry{}, nil
	}
	entries, err := s.audit.Entries(ctx, id.Hex(), historyLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return entries, nil
}
