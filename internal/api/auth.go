package api

import (
	"context"
	"net/http"

	"ripple/internal/models"
)

// LoginResponse is the payload returned by POST /auth/login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login authenticates with email and password and returns the issued token
// plus the user object.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if email == "" || password == "" {
		return nil, models.NewValidationError("email and password are required")
	}
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile fetches the authenticated user, confirming that the persisted
// token is still accepted by the server.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	Username string `json:"username,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/users/me", in, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}
