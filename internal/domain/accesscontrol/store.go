package accesscontrol

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	HasActiveSubscription(ctx context.Context, userID int64) (bool, error)
	GetSubscription(ctx context.Context, userID int64) (*Subscription, error)
	UpsertSubscription(ctx context.Context, sub *Subscription) error
	RecordGrant(ctx context.Context, userID, reviewID int64) error
	HasGrant(ctx context.Context, userID, reviewID int64) (bool, error)
	ListGrantedReviewIDs(ctx context.Context, userID int64) ([]int64, error)
	HasFullAccess(ctx context.Context, userID, reviewID int64, role RoleName) (bool, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions
            WHERE user_id = $1
              AND active
              AND (expires_at IS NULL OR expires_at > NOW())
        )`, userID).Scan(&exists)
	return exists, err
}

func (r *Repository) GetSubscription(ctx context.Context, userID int64) (*Subscription, error) {
	const query = `
        SELECT id, user_id, plan, active, expires_at, created_at, updated_at
        FROM subscriptions
        WHERE user_id = $1`
	var s Subscription
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.Plan, &s.Active, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) UpsertSubscription(ctx context.Context, sub *Subscription) error {
	const query = `
        INSERT INTO subscriptions (user_id, plan, active, expires_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id)
        DO UPDATE SET plan = EXCLUDED.plan, active = EXCLUDED.active,
                      expires_at = EXCLUDED.expires_at, updated_at = NOW()
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query, sub.UserID, sub.Plan, sub.Active, sub.ExpiresAt).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *Repository) RecordGrant(ctx context.Context, userID, reviewID int64) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO review_access_grants (user_id, review_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, review_id) DO NOTHING`, userID, reviewID)
	return err
}

func (r *Repository) HasGrant(ctx context.Context, userID, reviewID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM review_access_grants
            WHERE user_id = $1 AND review_id = $2
        )`, userID, reviewID).Scan(&exists)
	return exists, err
}

func (r *Repository) ListGrantedReviewIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
        SELECT review_id FROM review_access_grants WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasFullAccess gates the customer-identifying fields of a review:
// active subscription, admin role, or a one-time grant for this exact
// (user, review) pair.
func (r *Repository) HasFullAccess(ctx context.Context, userID, reviewID int64, role RoleName) (bool, error) {
	if role == RoleAdmin {
		return true, nil
	}

	subscribed, err := r.HasActiveSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	if subscribed {
		return true, nil
	}

	return r.HasGrant(ctx, userID, reviewID)
}
