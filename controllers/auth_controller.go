package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/middleware"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/services"
	"go.uber.org/zap"
)

type AuthController struct {
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthController(auth *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badBody(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, token, err := h.auth.Register(ctx, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (h *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badBody(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, token, err := h.auth.Login(ctx, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, sessionResponse{User: user, Token: token})
}

func (h *AuthController) Logout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.auth.Logout(ctx, middleware.Token(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "Logged out successfully")
}

func (h *AuthController) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.Me(ctx, p.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, user)
}
