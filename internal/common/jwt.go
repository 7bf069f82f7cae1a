package common

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskchat/internal/config"
)

// Claims represents the data stored in a JWT token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type TokenVerifier interface {
	ValidToken(tokenString string) (*Claims, error)
}

type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenManager(cfg *config.Config) *TokenManager {
	if cfg.Auth.JWTSecret == "" {
		log.Println("JWT_SECRET is empty, every token will be rejected")
	}
	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(cfg.Auth.JWTSecret),
		issuer: cfg.Auth.Issuer,
		ttl:    ttl,
	}
}

func (m *TokenManager) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) ValidToken(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, errors.New("token signing secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
