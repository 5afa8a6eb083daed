package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/payment"
	"go.uber.org/zap"
)

type PaymentController struct {
	gateway payment.Gateway
	logger  *zap.Logger
}

func NewPaymentController(gateway payment.Gateway, logger *zap.Logger) *PaymentController {
	return &PaymentController{gateway: gateway, logger: logger}
}

func (h *PaymentController) CreateIntent(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badBody(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	intent, err := h.gateway.CreateIntent(ctx, body.Amount, p.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"clientSecret": intent.ClientSecret,
		"data":         intent,
	})
}

// Webhook acknowledges processor events. Events naming an intent this gateway
// never issued are rejected; known ones are logged by type.
func (h *PaymentController) Webhook(c *gin.Context) {
	var event payment.Event
	if err := c.ShouldBindJSON(&event); err != nil || event.Type == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Webhook Error: malformed event"})
		return
	}
	intent, ok := h.gateway.Intent(event.IntentID())
	if !ok {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Webhook Error: unknown payment intent"})
		return
	}

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount", intent.AmountCents),
		zap.String("user_id", intent.UserID),
	}
	switch event.Type {
	case payment.EventSucceeded:
		h.logger.Info("payment succeeded", fields...)
	case payment.EventFailed:
		h.logger.Warn("payment failed", fields...)
	default:
		h.logger.Info("unhandled payment event", fields...)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
