package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PushTokensStore struct {
	db *pgxpool.Pool
}

func (s *PushTokensStore) AddOrUpdate(ctx context.Context, userID int64, token string, deviceInfo []byte) error {
	const query = `
        INSERT INTO push_tokens (user_id, token, device_info)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, token)
        DO UPDATE SET device_info = EXCLUDED.device_info, updated_at = NOW()`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, userID, token, deviceInfo)
	return err
}

func (s *PushTokensStore) Remove(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `
        DELETE FROM push_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	return err
}

// PruneStale drops tokens that have not been refreshed recently.
func (s *PushTokensStore) PruneStale(ctx context.Context, olderThan time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cutoff := time.Now().Add(-olderThan)
	_, err := s.db.Exec(ctx, `
        DELETE FROM push_tokens WHERE updated_at < $1`, cutoff)
	return err
}

// GetByUserIDs fetches every token for the given users in one query,
// keyed by user for the notification fan-out.
func (s *PushTokensStore) GetByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error) {
	tokens := make(map[int64][]string)
	if len(userIDs) == 0 {
		return tokens, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `
        SELECT user_id, token FROM push_tokens WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var token string
		if err := rows.Scan(&userID, &token); err != nil {
			return nil, err
		}
		tokens[userID] = append(tokens[userID], token)
	}
	return tokens, rows.Err()
}
