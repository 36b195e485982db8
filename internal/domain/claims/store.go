package claims

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Claim(ctx context.Context, reviewID, userID int64, claimType ClaimType) error
	GetForReview(ctx context.Context, reviewID int64) (*Claim, error)
	ListForUser(ctx context.Context, userID int64) ([]Claim, error)
	IsClaimedBy(ctx context.Context, reviewID, userID int64) (bool, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// Claim records the claim and resolves the review's customer_id in one
// transaction. A second claim on the same review loses to the unique
// index and comes back as ErrAlreadyClaimed, whoever the first claimant
// was.
func (r *Repository) Claim(ctx context.Context, reviewID, userID int64, claimType ClaimType) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
        INSERT INTO review_claims (review_id, claimed_by, claim_type, claimed_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (review_id) DO NOTHING
        RETURNING id`, reviewID, userID, claimType).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyClaimed
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
        UPDATE reviews SET customer_id = $2
        WHERE id = $1 AND customer_id IS NULL`, reviewID, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetForReview(ctx context.Context, reviewID int64) (*Claim, error) {
	const query = `
        SELECT id, review_id, claimed_by, claim_type, claimed_at
        FROM review_claims
        WHERE review_id = $1`
	var c Claim
	err := r.db.QueryRow(ctx, query, reviewID).Scan(&c.ID, &c.ReviewID, &c.ClaimedBy, &c.ClaimType, &c.ClaimedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Claim, error) {
	const query = `
        SELECT id, review_id, claimed_by, claim_type, claimed_at
        FROM review_claims
        WHERE claimed_by = $1
        ORDER BY claimed_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Claim
	for rows.Next() {
		var c Claim
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.ClaimedBy, &c.ClaimType, &c.ClaimedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) IsClaimedBy(ctx context.Context, reviewID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
          SELECT 1 FROM review_claims
          WHERE review_id = $1 AND claimed_by = $2
        )`, reviewID, userID).Scan(&exists)
	return exists, err
}
