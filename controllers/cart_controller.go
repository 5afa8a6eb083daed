package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CartController struct {
	carts  *services.CartService
	logger *zap.Logger
}

func NewCartController(carts *services.CartService, logger *zap.Logger) *CartController {
	return &CartController{carts: carts, logger: logger}
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (r cartItemRequest) productID() (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(r.ProductID)
	if err != nil {
		return primitive.NilObjectID, apperror.NewValidation("productId", "Product is required")
	}
	return id, nil
}

func (h *CartController) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.Get(ctx, p.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *CartController) Add(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body cartItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badBody(c)
		return
	}
	productID, err := body.productID()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	quantity := 1
	if body.Quantity != nil {
		quantity = *body.Quantity
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.AddItem(ctx, p.UserID, productID, quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *CartController) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body cartItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badBody(c)
		return
	}
	productID, err := body.productID()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	// An absent quantity is not a removal; only an explicit value <= 0 is.
	if body.Quantity == nil {
		respondError(c, h.logger, apperror.NewValidation("quantity", "Quantity is required"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.SetQuantity(ctx, p.UserID, productID, *body.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *CartController) Remove(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId", "product")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.RemoveItem(ctx, p.UserID, productID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *CartController) Clear(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.Clear(ctx, p.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, cart)
}
