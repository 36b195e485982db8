package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionsStore struct {
	db *pgxpool.Pool
}

// TouchLastLogin stamps the user's last_login and returns the previous
// value. The feed uses the previous stamp to flag reviews created since
// the user last looked.
func (s *SessionsStore) TouchLastLogin(ctx context.Context, userID int64) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var previous *time.Time
	err := s.db.QueryRow(ctx, `
        UPDATE users
        SET last_login = NOW()
        WHERE id = $1
        RETURNING (SELECT last_login FROM users WHERE id = $1)`, userID).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	if previous == nil {
		return time.Time{}, nil
	}
	return *previous, nil
}
