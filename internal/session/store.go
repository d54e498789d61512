package session

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/expensedesk/expensectl/internal/api"
	"github.com/expensedesk/expensectl/internal/domain/entity"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Store holds the authenticated identity and bearer token, persisted in
// client-local storage. It is constructed once at application root and
// passed to every consumer; there is no module-level session state.
type Store struct {
	authAPI *api.AuthAPI
	client  *api.Client
	storage Storage
	logger  *zap.Logger

	mu            sync.RWMutex
	identity      *entity.Identity
	rawUser       string
	authenticated bool
}

// NewStore restores any persisted session from storage and registers the
// unauthorized hook so that any 401/403 response forces a logout.
func NewStore(authAPI *api.AuthAPI, client *api.Client, storage Storage, logger *zap.Logger) *Store {
	s := &Store{
		authAPI: authAPI,
		client:  client,
		storage: storage,
		logger:  logger,
	}
	s.restore()
	client.OnUnauthorized(s.Logout)
	return s
}

// restore loads a previously persisted token and identity. Corrupted
// stored data invalidates the session rather than crashing.
func (s *Store) restore() {
	token, haveToken := s.storage.Get(KeyToken)
	rawUser, haveUser := s.storage.Get(KeyUser)
	if !haveToken || !haveUser || token == "" || rawUser == "" {
		return
	}

	var identity entity.Identity
	if err := json.Unmarshal([]byte(rawUser), &identity); err != nil {
		s.logger.Warn("Stored user record is not valid JSON, invalidating session",
			zap.Error(err))
		s.clearStorage()
		return
	}

	s.mu.Lock()
	s.identity = &identity
	s.rawUser = rawUser
	s.authenticated = true
	s.mu.Unlock()
	s.client.SetToken(token)
	s.logger.Debug("Session restored from storage",
		zap.String("email", identity.Email))
}

// IngestCallback consumes OAuth callback parameters (token and user).
// Fresh callback values always overwrite an existing session. A user value
// that fails to parse as JSON is kept as an opaque string rather than
// rejected. Returns false when the values do not describe a session.
func (s *Store) IngestCallback(values url.Values) bool {
	token := values.Get("token")
	rawUser := values.Get("user")
	if token == "" || rawUser == "" {
		return false
	}

	var identity *entity.Identity
	var parsed entity.Identity
	if err := json.Unmarshal([]byte(rawUser), &parsed); err != nil {
		s.logger.Warn("OAuth user parameter is not valid JSON, keeping it opaque")
	} else {
		identity = &parsed
	}

	s.persist(token, rawUser, identity)
	s.logger.Info("Session established from OAuth callback")
	return true
}

// Login exchanges credentials for a session. The backend's error message
// is propagated on rejection.
func (s *Store) Login(ctx context.Context, email, password string) (*entity.Identity, error) {
	resp, err := s.authAPI.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	rawUser, err := json.Marshal(resp.User)
	if err != nil {
		return nil, err
	}
	s.persist(resp.Token, string(rawUser), &resp.User)
	s.logger.Info("Logged in", zap.String("email", resp.User.Email))
	return s.Identity(), nil
}

// Signup registers a new account. It does not establish a session; the
// caller logs in afterwards, as the original flow does.
func (s *Store) Signup(ctx context.Context, req api.SignupRequest) (*entity.Identity, error) {
	return s.authAPI.Signup(ctx, req)
}

// Logout clears the identity, token and persisted storage. It is
// synchronous and performs no backend call.
func (s *Store) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.authenticated
	s.identity = nil
	s.rawUser = ""
	s.authenticated = false
	s.mu.Unlock()

	s.clearStorage()
	s.client.ClearToken()
	if wasAuthenticated {
		s.logger.Info("Logged out")
	}
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Identity returns the current identity, nil when unauthenticated or when
// the persisted user value was opaque.
func (s *Store) Identity() *entity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// RawUser returns the persisted user value verbatim, useful when it could
// not be parsed as JSON.
func (s *Store) RawUser() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawUser
}

// TokenClaims decodes the bearer token's claims without verifying its
// signature, for display purposes only (expiry, subject). Session validity
// is decided solely by the presence of token and user in storage.
func (s *Store) TokenClaims() (jwt.MapClaims, error) {
	token := s.client.Token()
	if token == "" {
		return nil, api.ErrUnauthenticated
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Store) persist(token, rawUser string, identity *entity.Identity) {
	if err := s.storage.Set(KeyToken, token); err != nil {
		s.logger.Error("Failed to persist token", zap.Error(err))
	}
	if err := s.storage.Set(KeyUser, rawUser); err != nil {
		s.logger.Error("Failed to persist user", zap.Error(err))
	}

	s.mu.Lock()
	s.identity = identity
	s.rawUser = rawUser
	s.authenticated = true
	s.mu.Unlock()
	s.client.SetToken(token)
}

func (s *Store) clearStorage() {
	if err := s.storage.Delete(KeyToken); err != nil {
		s.logger.Error("Failed to clear token", zap.Error(err))
	}
	if err := s.storage.Delete(KeyUser); err != nil {
		s.logger.Error("Failed to clear user", zap.Error(err))
	}
}
