// ABOUTME: Account endpoints: register, login, current user and profile update

package api

import (
	"context"
	"net/http"
)

// Register creates an account.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	var user User
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/v1/usuarios/register", body: in}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, in LoginInput) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/v1/usuarios/login", body: in}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/usuarios/me", auth: true}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe updates the authenticated user's profile.
func (c *Client) UpdateMe(ctx context.Context, in UpdateUserInput) (*User, error) {
	var user User
	err := c.do(ctx, request{method: http.MethodPatch, path: "/api/v1/usuarios/me", body: in, auth: true}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
