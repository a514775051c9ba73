package model

import (
	"encoding/json"
	"fmt"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the signup request body.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair holds the bearer tokens issued at login, signup and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResponse is the typed form of a login or signup body.
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// AuthPayload is a login or signup body exactly as the server sent it.
// Interpreting the session fields is up to the caller.
type AuthPayload map[string]any

// AccessToken returns tokens.access_token, falling back to a top-level
// access_token field. It returns "" when neither is a string.
func (p AuthPayload) AccessToken() string {
	return p.token("access_token")
}

// RefreshToken returns tokens.refresh_token, falling back to a top-level
// refresh_token field.
func (p AuthPayload) RefreshToken() string {
	return p.token("refresh_token")
}

func (p AuthPayload) token(key string) string {
	if tokens, ok := p["tokens"].(map[string]any); ok {
		if s, ok := tokens[key].(string); ok {
			return s
		}
	}
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Decode re-reads the payload as an AuthResponse.
func (p AuthPayload) Decode() (*AuthResponse, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal auth payload: %w", err)
	}
	var out AuthResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode auth payload: %w", err)
	}
	return &out, nil
}
