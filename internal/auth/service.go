package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUserNotFound is returned when a valid token names a user that no longer
// exists in the credential store.
var ErrUserNotFound = errors.New("user not found")

// Identity is the verified user record resolved from a session token.
type Identity struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Service resolves bearer tokens to verified identities. It is read-only:
// authentication performs no side effects.
type Service struct {
	db         *sql.DB
	tokens     *TokenService
	headerName string
}

// NewService constructs the guard over the credential store and token service.
func NewService(db *sql.DB, tokens *TokenService) *Service {
	return &Service{
		db:         db,
		tokens:     tokens,
		headerName: "Authorization",
	}
}

// Tokens exposes the underlying token service for login issuance.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Authenticate verifies the token and loads the full user record for its
// subject. Returns ErrInvalidToken or ErrUserNotFound; callers must reject
// the request before performing any further work.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	var id Identity
	err = s.db.QueryRowContext(ctx,
		`SELECT id, username, email, created_at FROM users WHERE username = ?`, subject,
	).Scan(&id.ID, &id.Username, &id.Email, &id.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &id, nil
}
