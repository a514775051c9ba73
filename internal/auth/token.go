// Package auth issues and verifies the API server's bearer tokens and password hashes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"datamorph/internal/config"
	"datamorph/internal/model"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// ErrInvalidToken covers malformed, expired and wrongly typed tokens.
var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager signs HS256 access and refresh tokens whose subject is a user id.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// Issue returns a fresh access/refresh pair for userID.
func (m *TokenManager) Issue(userID string) (*model.TokenPair, error) {
	access, err := m.sign(userID, typeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, typeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(m.accessTTL / time.Second),
	}, nil
}

// VerifyAccess returns the user id carried by an access token.
func (m *TokenManager) VerifyAccess(token string) (string, error) {
	return m.verify(token, typeAccess)
}

// VerifyRefresh returns the user id carried by a refresh token.
func (m *TokenManager) VerifyRefresh(token string) (string, error) {
	return m.verify(token, typeRefresh)
}

func (m *TokenManager) sign(userID, typ string, ttl time.Duration) (string, error) {
	now := m.now()
	c := claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return s, nil
}

func (m *TokenManager) verify(token, typ string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Type != typ || c.Subject == "" {
		return "", fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}
	return c.Subject, nil
}
