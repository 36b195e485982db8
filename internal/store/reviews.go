package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Review is a business-authored review of a customer. The customer side
// may be a registered account (CustomerID) or just the inline identity
// fields the business typed in.
type Review struct {
	ID              int64      `json:"id"`
	BusinessID      int64      `json:"business_id"`
	CustomerID      *int64     `json:"customer_id,omitempty"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   NullString `json:"customer_phone" swaggertype:"string"`
	CustomerAddress NullString `json:"customer_address" swaggertype:"string"`
	Rating          int        `json:"rating"`
	Content         string     `json:"content"`
	PhotoURLs       []string   `json:"photo_urls"`
	IsAnonymous     bool       `json:"is_anonymous"`
	ShareCode       NullString `json:"share_code" swaggertype:"string"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"-"`
}

type ReviewsStore struct {
	db *sql.DB
}

func (s *ReviewsStore) Create(ctx context.Context, review *Review) error {
	const query = `
        INSERT INTO reviews (business_id, customer_id, customer_name, customer_phone,
                             customer_address, rating, content, photo_urls, is_anonymous)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRowContext(ctx, query,
		review.BusinessID, review.CustomerID, review.CustomerName,
		nullable(review.CustomerPhone), nullable(review.CustomerAddress),
		review.Rating, review.Content, pq.Array(review.PhotoURLs), review.IsAnonymous,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

const reviewColumns = `
        id, business_id, customer_id, customer_name, customer_phone,
        customer_address, rating, content, photo_urls, is_anonymous,
        share_code, created_at, updated_at`

func (s *ReviewsStore) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	query := `SELECT` + reviewColumns + `
        FROM reviews
        WHERE id = $1 AND deleted_at IS NULL`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanReview(s.db.QueryRowContext(ctx, query, reviewID))
}

func (s *ReviewsStore) GetByShareCode(ctx context.Context, code string) (*Review, error) {
	query := `SELECT` + reviewColumns + `
        FROM reviews
        WHERE share_code = $1 AND deleted_at IS NULL`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanReview(s.db.QueryRowContext(ctx, query, code))
}

func (s *ReviewsStore) ListByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]Review, int, error) {
	query := `SELECT` + reviewColumns + `
        FROM reviews
        WHERE business_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM reviews
        WHERE business_id = $1 AND deleted_at IS NULL`, businessID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews, err := collectReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListCandidates returns every live review along with no claim filtering;
// the matcher decides per user which ones are visible.
func (s *ReviewsStore) ListCandidates(ctx context.Context) ([]Review, error) {
	query := `SELECT` + reviewColumns + `
        FROM reviews
        WHERE deleted_at IS NULL
        ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviews(rows)
}

// SoftDelete hides a review without destroying the claim and conversation
// history hanging off it. Only the authoring business may delete.
func (s *ReviewsStore) SoftDelete(ctx context.Context, reviewID, businessID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
        UPDATE reviews
        SET deleted_at = NOW()
        WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL`,
		reviewID, businessID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ReviewsStore) SetShareCode(ctx context.Context, reviewID int64, code string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
        UPDATE reviews SET share_code = $1, updated_at = NOW() WHERE id = $2`,
		code, reviewID)
	return err
}

func (s *ReviewsStore) AddPhotoURL(ctx context.Context, reviewID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
        UPDATE reviews
        SET photo_urls = array_append(photo_urls, $1), updated_at = NOW()
        WHERE id = $2 AND deleted_at IS NULL`,
		url, reviewID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ReviewsStore) RemovePhotoURL(ctx context.Context, reviewID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
        UPDATE reviews
        SET photo_urls = array_remove(photo_urls, $1), updated_at = NOW()
        WHERE id = $2`,
		url, reviewID)
	return err
}

func scanReview(row *sql.Row) (*Review, error) {
	var r Review
	var phone, address, shareCode sql.NullString
	err := row.Scan(
		&r.ID, &r.BusinessID, &r.CustomerID, &r.CustomerName, &phone, &address,
		&r.Rating, &r.Content, pq.Array(&r.PhotoURLs), &r.IsAnonymous,
		&shareCode, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.CustomerPhone = NewNullString(phone)
	r.CustomerAddress = NewNullString(address)
	r.ShareCode = NewNullString(shareCode)
	return &r, nil
}

func collectReviews(rows *sql.Rows) ([]Review, error) {
	var reviews []Review
	for rows.Next() {
		var r Review
		var phone, address, shareCode sql.NullString
		err := rows.Scan(
			&r.ID, &r.BusinessID, &r.CustomerID, &r.CustomerName, &phone, &address,
			&r.Rating, &r.Content, pq.Array(&r.PhotoURLs), &r.IsAnonymous,
			&shareCode, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		r.CustomerPhone = NewNullString(phone)
		r.CustomerAddress = NewNullString(address)
		r.ShareCode = NewNullString(shareCode)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
