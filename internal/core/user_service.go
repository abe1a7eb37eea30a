package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// UserService authenticates console users. The authenticated username is the
// actor string stamped on every audit record.
type UserService struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewUserService(pool *pgxpool.Pool) *UserService {
	return &UserService{pool: pool, timeout: 5 * time.Second}
}

// Authenticate verifies credentials and returns the user on success.
// Wrong username and wrong password both come back as ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, display_name, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}
