package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type AuthService struct {
	users     UserRepository
	blacklist TokenBlacklist
	secret    []byte
	expire    time.Duration
	now       func() time.Time
}

func NewAuthService(users UserRepository, blacklist TokenBlacklist, secret string, expire time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		blacklist: blacklist,
		secret:    []byte(secret),
		expire:    expire,
		now:       time.Now,
	}
}

var errBadCredentials = &apperror.AuthenticationError{Message: "Invalid email or password"}

func (s *AuthService) issue(user *models.User) (string, error) {
	claims := Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  s.now().Unix(),
			ExpiresAt: s.now().Add(s.expire).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Register always creates a customer. Admins are created by the seed command.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
		Role:     models.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, apperror.ErrRecordNotFound) {
		return nil, "", errBadCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, "", errBadCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ParseToken verifies the signature and expiry of a bearer token.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, &apperror.AuthenticationError{Message: "Invalid or expired token"}
	}
	return claims, nil
}

// Authenticate resolves a bearer token to the caller, rejecting logged-out
// tokens.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (models.Principal, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return models.Principal{}, err
	}
	revoked, err := s.blacklist.Contains(ctx, tokenString)
	if err != nil {
		return models.Principal{}, fmt.Errorf("check token blacklist: %w", err)
	}
	if revoked {
		return models.Principal{}, &apperror.AuthenticationError{Message: "Token has been blacklisted"}
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.Principal{}, &apperror.AuthenticationError{Message: "Invalid or expired token"}
	}
	return models.Principal{UserID: userID, Role: claims.Role}, nil
}

// Logout blacklists the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return err
	}
	if err := s.blacklist.Add(ctx, tokenString, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User", userID)
	}
	return user, nil
}
