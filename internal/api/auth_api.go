package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/expensedesk/expensectl/internal/domain/entity"
	"go.uber.org/zap"
)

// AuthAPI handles authentication and user-directory operations
type AuthAPI struct {
	client *Client
	logger *zap.Logger
}

// NewAuthAPI creates a new auth API handler
func NewAuthAPI(client *Client, logger *zap.Logger) *AuthAPI {
	return &AuthAPI{client: client, logger: logger}
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	Token string          `json:"token"`
	User  entity.Identity `json:"user"`
}

// SignupRequest carries the fields of a new account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role,omitempty"`
}

// Login exchanges credentials for a bearer token and identity.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := a.client.sendJSON(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response missing token")
	}
	return &resp, nil
}

// Signup registers a new account and returns the created identity.
func (a *AuthAPI) Signup(ctx context.Context, req SignupRequest) (*entity.Identity, error) {
	var identity entity.Identity
	if err := a.client.sendJSON(ctx, http.MethodPost, "/api/auth/signup", req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Users returns the user directory (admin only).
func (a *AuthAPI) Users(ctx context.Context) ([]entity.Identity, error) {
	var users []entity.Identity
	if err := a.client.getJSON(ctx, "/api/auth/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes a user's role (admin only).
func (a *AuthAPI) UpdateUserRole(ctx context.Context, userID int64, role string) error {
	path := fmt.Sprintf("/api/auth/users/%d/role", userID)
	req := map[string]string{"role": role}
	return a.client.sendJSON(ctx, http.MethodPut, path, req, nil)
}
