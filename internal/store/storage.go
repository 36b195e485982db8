package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		GetByPhone(context.Context, string) (*User, error)
		UpdateUser(context.Context, int64, map[string]interface{}) error
		SetAvatar(context.Context, int64, string) error
		GetAvatarURL(context.Context, int64) (string, error)
		SetRefreshToken(context.Context, int64, string) error
		GetRefreshToken(context.Context, int64) (string, error)
		ClearRefreshToken(context.Context, int64) error
	}
	Reviews interface {
		Create(context.Context, *Review) error
		GetByID(context.Context, int64) (*Review, error)
		GetByShareCode(context.Context, string) (*Review, error)
		ListByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]Review, int, error)
		ListCandidates(context.Context) ([]Review, error)
		SoftDelete(context.Context, int64, int64) error
		SetShareCode(context.Context, int64, string) error
		AddPhotoURL(context.Context, int64, string) error
		RemovePhotoURL(context.Context, int64, string) error
	}
	Verifications interface {
		Issue(ctx context.Context, contact, channel, code string, expiresAt time.Time, cooldown time.Duration) error
		Validate(ctx context.Context, contact, channel, code string) error
	}
	Sessions interface {
		TouchLastLogin(ctx context.Context, userID int64) (time.Time, error)
	}
	PushTokens interface {
		AddOrUpdate(ctx context.Context, userID int64, token string, deviceInfo []byte) error
		Remove(ctx context.Context, userID int64, token string) error
		GetByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error)
		PruneStale(ctx context.Context, olderThan time.Duration) error
	}
}

// NewStorage wires the stores over both database handles. Reviews stay on
// database/sql (lib/pq); the rest run on the pgx pool.
func NewStorage(db *sql.DB, pool *pgxpool.Pool) Storage {
	return Storage{
		Users:         &UsersStore{pool},
		Reviews:       &ReviewsStore{db},
		Verifications: &VerificationsStore{pool},
		Sessions:      &SessionsStore{pool},
		PushTokens:    &PushTokensStore{pool},
	}
}
