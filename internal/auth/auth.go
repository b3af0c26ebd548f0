// Package auth issues and checks bearer tokens and turns them into a
// per-request access.Principal.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"silant-backend/config"
	e "silant-backend/internal/errors"
	"silant-backend/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const issuer = "silant"

// UserStore is the part of the store the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

// Claims is the token payload.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service handles authentication operations.
type Service struct {
	users     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new authentication service.
func NewService(cfg config.AuthConfig, users UserStore, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		logger:    logger.Named("auth"),
		now:       time.Now,
	}
}

// HashPassword hashes a password using bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken signs a token for user.
func (s *Service) GenerateToken(user model.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken checks signature and expiry and returns the user ID.
func (s *Service) ValidateToken(raw string) (int64, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Login checks credentials and returns a token for an active user.
func (s *Service) Login(ctx context.Context, username, password string) (string, model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, e.ErrNotFound) {
		return "", model.User{}, e.ErrInvalidCredentials
	}
	if err != nil {
		return "", model.User{}, err
	}
	if !user.IsActive || !s.CheckPassword(password, user.PasswordHash) {
		s.logger.Info("login rejected", zap.String("username", username))
		return "", model.User{}, e.ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return "", model.User{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

// Register creates an active user without any role. An administrator links
// it to a client or service company afterwards.
func (s *Service) Register(ctx context.Context, username, password string) (model.User, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{Username: username, PasswordHash: hash, IsActive: true}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// EnsureAdmin creates a superuser named username unless one exists already.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, e.ErrNotFound) {
		return err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	admin := model.User{Username: username, PasswordHash: hash, IsSuperuser: true, IsStaff: true, IsActive: true}
	if err := s.users.CreateUser(ctx, &admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap administrator created", zap.String("username", username))
	return nil
}
