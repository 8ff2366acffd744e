package domain

import (
	"context"
	"errors"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type Service interface {
	Login(context.Context, LoginRequest) (LoginResponse, error)
	// Resolve verifies a bearer token and hydrates the caller identity,
	// including the ordered list of active tenant memberships.
	Resolve(ctx context.Context, bearer string) (Identity, error)
}

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
)
