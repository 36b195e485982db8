package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCodeCooldown    = errors.New("a code was sent recently, wait before requesting another")
	ErrCodeInvalid     = errors.New("verification code is invalid or expired")
	ErrTooManyAttempts = errors.New("too many attempts for this code")
)

const maxVerificationAttempts = 5

type VerificationsStore struct {
	db *pgxpool.Pool
}

// Issue stores a fresh code for the contact, refusing if one was issued
// inside the cooldown window. Re-issuing invalidates earlier codes.
func (s *VerificationsStore) Issue(ctx context.Context, contact, channel, code string, expiresAt time.Time, cooldown time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var lastIssued *time.Time
	err = tx.QueryRow(ctx, `
        SELECT MAX(created_at) FROM verification_codes
        WHERE contact = $1 AND channel = $2`, contact, channel).Scan(&lastIssued)
	if err != nil {
		return err
	}
	if lastIssued != nil && time.Since(*lastIssued) < cooldown {
		return ErrCodeCooldown
	}

	if _, err := tx.Exec(ctx, `
        DELETE FROM verification_codes WHERE contact = $1 AND channel = $2`,
		contact, channel); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO verification_codes (contact, channel, code, expires_at)
        VALUES ($1, $2, $3, $4)`,
		contact, channel, code, expiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Validate consumes the code on success and counts failed attempts,
// locking the code out after too many wrong guesses.
func (s *VerificationsStore) Validate(ctx context.Context, contact, channel, code string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id int64
	var stored string
	var attempts int
	var expiresAt time.Time
	err = tx.QueryRow(ctx, `
        SELECT id, code, attempts, expires_at
        FROM verification_codes
        WHERE contact = $1 AND channel = $2
        FOR UPDATE`, contact, channel).Scan(&id, &stored, &attempts, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCodeInvalid
	}
	if err != nil {
		return err
	}

	if time.Now().After(expiresAt) {
		return ErrCodeInvalid
	}
	if attempts >= maxVerificationAttempts {
		return ErrTooManyAttempts
	}

	if stored != code {
		if _, err := tx.Exec(ctx, `
            UPDATE verification_codes SET attempts = attempts + 1 WHERE id = $1`, id); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		return ErrCodeInvalid
	}

	if _, err := tx.Exec(ctx, `DELETE FROM verification_codes WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
