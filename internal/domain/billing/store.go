package billing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	CreateSession(ctx context.Context, s *CheckoutSession) error
	GetSessionByProviderRef(ctx context.Context, providerRef string) (*CheckoutSession, error)
	MarkSessionStatus(ctx context.Context, providerRef string, status SessionStatus) error
	ReopenSession(ctx context.Context, providerRef string) error
	RecordWebhookEvent(ctx context.Context, eventID, eventType string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) CreateSession(ctx context.Context, s *CheckoutSession) error {
	const query = `
        INSERT INTO checkout_sessions (user_id, provider_ref, credits, amount_cents, currency, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		s.UserID, s.ProviderRef, s.Credits, s.AmountCents, s.Currency, s.Status).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *Repository) GetSessionByProviderRef(ctx context.Context, providerRef string) (*CheckoutSession, error) {
	const query = `
        SELECT id, user_id, provider_ref, credits, amount_cents, currency, status, created_at, updated_at
        FROM checkout_sessions
        WHERE provider_ref = $1`
	var s CheckoutSession
	err := r.db.QueryRow(ctx, query, providerRef).Scan(
		&s.ID, &s.UserID, &s.ProviderRef, &s.Credits, &s.AmountCents, &s.Currency,
		&s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkSessionStatus flips a pending session exactly once; a session that
// already left pending is not touched again, so a replayed confirmation
// cannot double-grant credits.
func (r *Repository) MarkSessionStatus(ctx context.Context, providerRef string, status SessionStatus) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE checkout_sessions
        SET status = $2, updated_at = NOW()
        WHERE provider_ref = $1 AND status = 'pending'`, providerRef, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ReopenSession puts a completed session back to pending so settlement
// can be retried. This is the compensation for a credit grant that failed
// after the session was already marked completed; without it the session
// would be stuck completed with no credits ever applied.
func (r *Repository) ReopenSession(ctx context.Context, providerRef string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE checkout_sessions
        SET status = $2, updated_at = NOW()
        WHERE provider_ref = $1 AND status = $3`,
		providerRef, StatusPending, StatusCompleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RecordWebhookEvent deduplicates provider webhooks by event id.
func (r *Repository) RecordWebhookEvent(ctx context.Context, eventID, eventType string) error {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO webhook_events (event_id, event_type)
        VALUES ($1, $2)
        ON CONFLICT (event_id) DO NOTHING
        RETURNING id`, eventID, eventType).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEventSeen
	}
	return err
}
