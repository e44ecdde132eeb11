package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"scribechat/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUsernameTaken is returned on duplicate registration.
	ErrUsernameTaken = errors.New("Username already exists")
	// ErrInvalidCredentials is returned uniformly for unknown identifiers
	// and wrong passwords so login cannot be used to enumerate users.
	ErrInvalidCredentials = errors.New("Invalid username or password")
)

// Service handles registration and credential verification.
type Service struct {
	db *sql.DB
}

// NewService builds an account service over the credential store.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Register creates a user with a bcrypt hash of the password. bcrypt embeds
// a per-call salt, so equal passwords never share a stored hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username, email, string(hash), now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// lost the race after the pre-check
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	return &models.User{ID: id, Username: username, Email: email, PasswordHash: string(hash), CreatedAt: now}, nil
}

// Login verifies the password for a username OR email identifier. The bcrypt
// comparison is constant-time with respect to the stored hash.
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ? OR email = ?`,
		identifier, identifier,
	)
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint") ||
		strings.Contains(s, "Duplicate entry") ||
		strings.Contains(s, "unique constraint")
}
