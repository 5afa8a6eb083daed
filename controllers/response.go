package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/middleware"
	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Response is the envelope every handler writes.
type Response struct {
	Success bool                  `json:"success"`
	Data    any                   `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
	Count   *int                  `json:"count,omitempty"`
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	c.JSON(http.StatusOK, Response{Success: true, Data: items, Count: &n})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// respondError maps err through apperror.HTTPStatus. Server errors are logged
// and their detail is kept out of the response.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, message := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
	}
	c.JSON(status, Response{Success: false, Message: message, Errors: apperror.Fields(err)})
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
}

// paramID parses a path id, answering 400 itself when it is not an ObjectID.
func paramID(c *gin.Context, name, resource string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid " + resource + " ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Not authorized"})
	}
	return p, ok
}
