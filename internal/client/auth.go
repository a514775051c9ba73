package client

import (
	"context"
	"net/http"

	"datamorph/internal/model"
)

var (
	loginFailure   = failure{message: "Login failed"}
	signupFailure  = failure{message: "Signup failed"}
	refreshFailure = failure{message: "Token refresh failed"}
	profileFailure = failure{message: "Failed to load profile", withStatus: true}
)

// Login exchanges credentials for a session. The body is returned as sent;
// use AuthPayload helpers to read tokens from it.
func (c *Client) Login(ctx context.Context, email, password string) (model.AuthPayload, error) {
	var out model.AuthPayload
	cl, err := jsonCall("login", http.MethodPost, "/api/v1/auth/login",
		model.Credentials{Email: email, Password: password}, loginFailure, &out)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return out, nil
}

// Signup creates an account. The body is returned as sent.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) (model.AuthPayload, error) {
	var out model.AuthPayload
	cl, err := jsonCall("signup", http.MethodPost, "/api/v1/auth/signup",
		model.SignupRequest{Email: email, Password: password, FullName: fullName}, signupFailure, &out)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return out, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	var out model.TokenPair
	cl, err := jsonCall("refresh", http.MethodPost, "/api/v1/auth/refresh",
		model.RefreshRequest{RefreshToken: refreshToken}, refreshFailure, &out)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var out model.User
	err := c.do(ctx, call{
		op:     "profile",
		method: http.MethodGet,
		path:   "/api/v1/auth/me",
		token:  token,
		fail:   profileFailure,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
