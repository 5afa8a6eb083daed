package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type OrderController struct {
	orders *services.OrderService
	logger *zap.Logger
}

func NewOrderController(orders *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

type orderItemRequest struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type createOrderRequest struct {
	OrderItems      []orderItemRequest     `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   json.RawMessage        `json:"paymentMethod"`
	TotalPrice      *float64               `json:"totalPrice"`
	IsPaid          *bool                  `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt"`
}

func (r createOrderRequest) input(userID primitive.ObjectID) (services.PlaceOrderInput, error) {
	in := services.PlaceOrderInput{
		UserID:          userID,
		ShippingAddress: r.ShippingAddress,
		TotalPrice:      r.TotalPrice,
		IsPaid:          r.IsPaid,
		PaidAt:          r.PaidAt,
	}
	var fields []apperror.FieldError
	if len(r.PaymentMethod) > 0 {
		if err := json.Unmarshal(r.PaymentMethod, &in.PaymentMethod); err != nil {
			fields = append(fields, apperror.FieldError{Field: "paymentMethod", Message: "Unsupported payment method"})
		}
	}
	for i, item := range r.OrderItems {
		id, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			fields = append(fields, apperror.FieldError{
				Field:   "orderItems[" + strconv.Itoa(i) + "].product",
				Message: "Invalid product ID",
			})
			continue
		}
		in.Items = append(in.Items, models.OrderItem{
			ProductID: id,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	if len(fields) > 0 {
		return in, &apperror.ValidationError{Fields: fields}
	}
	return in, nil
}

func (h *OrderController) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body createOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badBody(c)
		return
	}
	if len(body.OrderItems) == 0 {
		respondError(c, h.logger, apperror.EmptyOrderError{})
		return
	}
	input, err := body.input(p.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.PlaceOrder(ctx, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

func (h *OrderController) MyOrders(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.orders.ListMine(ctx, p.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, orders)
}

func (h *OrderController) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, id, p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *OrderController) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.orders.ListAll(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, orders)
}

func (h *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}
	var body struct {
		OrderStatus models.OrderStatus `json:"orderStatus"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badBody(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.UpdateStatus(ctx, id, body.OrderStatus)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *OrderController) Cancel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.Cancel(ctx, id, p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *OrderController) History(c *gin.Context) {
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	entries, err := h.orders.History(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, entries)
}
