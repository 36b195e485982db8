package credits

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	GetBalance(ctx context.Context, userID int64) (int, error)
	ListTransactions(ctx context.Context, userID int64) ([]Transaction, error)
	Apply(ctx context.Context, userID int64, amount int, txType TransactionType, description string, sessionRef *string) (int, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) GetBalance(ctx context.Context, userID int64) (int, error) {
	var balance int
	err := r.db.QueryRow(ctx,
		`SELECT balance FROM credits WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]Transaction, error) {
	const query = `
        SELECT id, user_id, amount, type, description, session_ref, created_at
        FROM credit_transactions
        WHERE user_id = $1
        ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description,
			&t.SessionRef, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// Apply mutates the balance and appends the ledger entry in one database
// transaction, holding a row lock on the balance for the duration. Two
// racing consumptions serialize here: the first one wins, the second sees
// the decremented balance and gets ErrInsufficientCredits. Callers never
// compute the new balance themselves; they read back the returned one.
func (r *Repository) Apply(ctx context.Context, userID int64, amount int, txType TransactionType, description string, sessionRef *string) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
        INSERT INTO credits (user_id, balance)
        VALUES ($1, 0)
        ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return 0, err
	}

	var balance int
	if err := tx.QueryRow(ctx, `
        SELECT balance FROM credits WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance); err != nil {
		return 0, err
	}

	newBalance := balance + amount
	if newBalance < 0 {
		return 0, ErrInsufficientCredits
	}

	if _, err := tx.Exec(ctx, `
        UPDATE credits SET balance = $2, updated_at = NOW()
        WHERE user_id = $1`, userID, newBalance); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO credit_transactions (user_id, amount, type, description, session_ref)
        VALUES ($1, $2, $3, $4, $5)`, userID, amount, txType, description, sessionRef); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}
