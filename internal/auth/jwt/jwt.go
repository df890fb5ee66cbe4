// Package jwt issues and validates the bearer tokens that carry a caller's
// access scope between requests.
package jwt

import (
	"errors"
	"time"

	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidAlgorithm = errors.New("invalid signing algorithm")
	ErrEmptySecretKey   = errors.New("secret key cannot be empty")
	ErrWeakSecretKey    = errors.New("secret key must be at least 32 characters")
	ErrInvalidDuration  = errors.New("duration must be positive")
)

// Claims is the caller identity embedded in a token
type Claims struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	RegionID string `json:"region_id,omitempty"`
	BranchID string `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

// Caller converts the claims into the identity services scope by
func (c *Claims) Caller() scope.Caller {
	return scope.Caller{
		UserID:   c.UserID,
		Name:     c.Name,
		Role:     c.Role,
		RegionID: c.RegionID,
		BranchID: c.BranchID,
	}
}

type Service struct {
	config config.JWTConfig
	now    func() time.Time
}

func NewService(cfg config.JWTConfig) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, ErrEmptySecretKey
	}
	if len(cfg.SecretKey) < 32 {
		return nil, ErrWeakSecretKey
	}
	if cfg.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	return &Service{config: cfg, now: time.Now}, nil
}

// GenerateToken signs a token for caller
func (s *Service) GenerateToken(caller scope.Caller) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   caller.UserID,
		Name:     caller.Name,
		Role:     caller.Role,
		RegionID: caller.RegionID,
		BranchID: caller.BranchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidAlgorithm
		}
		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
