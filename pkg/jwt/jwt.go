package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the identity claims carried by a bearer token.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Avatar      string `json:"avatar,omitempty"`
}

// Manager verifies externally issued HS256 tokens against a shared secret.
type Manager struct {
	secret   []byte
	issuer   string
	duration time.Duration
}

// NewManager creates a new JWT manager.
func NewManager(secret, issuer string, duration time.Duration) *Manager {
	return &Manager{
		secret:   []byte(secret),
		issuer:   issuer,
		duration: duration,
	}
}

// ValidateToken validates a token and returns its claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateToken signs a token for the given identity. The coordinator itself
// never issues tokens in production; this exists for tooling and tests.
func (m *Manager) GenerateToken(userID, username, displayName, role, avatar string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
		},
		UserID:      userID,
		Username:    username,
		DisplayName: displayName,
		Role:        role,
		Avatar:      avatar,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
