package conversations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	GetMessages(ctx context.Context, reviewID int64) ([]Message, error)
	GetParticipant(ctx context.Context, reviewID int64) (*Participant, error)
	LoadTurnContext(ctx context.Context, reviewID int64) (TurnContext, error)
	StartConversation(ctx context.Context, reviewID, customerID int64, content string) (int64, error)
	AddMessage(ctx context.Context, reviewID, authorID int64, authorType AuthorType, content string) (int64, error)
	UpdateMessage(ctx context.Context, messageID, authorID int64, content string) error
	DeleteMessage(ctx context.Context, messageID, authorID int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) GetMessages(ctx context.Context, reviewID int64) ([]Message, error) {
	const query = `
        SELECT id, review_id, author_id, author_type, content, message_order, created_at, updated_at
        FROM review_conversations
        WHERE review_id = $1
        ORDER BY message_order ASC`
	rows, err := r.db.Query(ctx, query, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ReviewID, &m.AuthorID, &m.AuthorType, &m.Content,
			&m.MessageOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *Repository) GetParticipant(ctx context.Context, reviewID int64) (*Participant, error) {
	const query = `
        SELECT id, review_id, customer_id, business_id, first_customer_response_at, created_at
        FROM conversation_participants
        WHERE review_id = $1`
	var p Participant
	err := r.db.QueryRow(ctx, query, reviewID).Scan(
		&p.ID, &p.ReviewID, &p.CustomerID, &p.BusinessID, &p.FirstCustomerResponseAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadTurnContext gathers the review row, participant row, and the last
// remaining message so CanRespond can be answered without further I/O.
func (r *Repository) LoadTurnContext(ctx context.Context, reviewID int64) (TurnContext, error) {
	var tc TurnContext

	const reviewQuery = `
        SELECT business_id, customer_id, is_anonymous
        FROM reviews
        WHERE id = $1 AND deleted_at IS NULL`
	err := r.db.QueryRow(ctx, reviewQuery, reviewID).Scan(
		&tc.ReviewBusinessID, &tc.ReviewCustomerID, &tc.ReviewAnonymous)
	if errors.Is(err, pgx.ErrNoRows) {
		return tc, ErrReviewGone
	}
	if err != nil {
		return tc, err
	}

	tc.Participant, err = r.GetParticipant(ctx, reviewID)
	if err != nil {
		return tc, err
	}

	const lastQuery = `
        SELECT id, review_id, author_id, author_type, content, message_order, created_at, updated_at
        FROM review_conversations
        WHERE review_id = $1
        ORDER BY message_order DESC
        LIMIT 1`
	var m Message
	err = r.db.QueryRow(ctx, lastQuery, reviewID).Scan(&m.ID, &m.ReviewID, &m.AuthorID,
		&m.AuthorType, &m.Content, &m.MessageOrder, &m.CreatedAt, &m.UpdatedAt)
	if err == nil {
		tc.LastMessage = &m
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return tc, err
	}

	return tc, nil
}

// StartConversation is the unclaimed -> active transition. In a single
// transaction it creates the participant binding, records the claim, and
// inserts message #1. Starting the conversation IS the claim action.
func (r *Repository) StartConversation(ctx context.Context, reviewID, customerID int64, content string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var businessID int64
	var subjectID *int64
	err = tx.QueryRow(ctx, `
        SELECT business_id, customer_id
        FROM reviews
        WHERE id = $1 AND deleted_at IS NULL
        FOR UPDATE`, reviewID).Scan(&businessID, &subjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrReviewGone
	}
	if err != nil {
		return 0, err
	}

	if subjectID != nil && *subjectID != customerID {
		return 0, ErrNotParticipant
	}

	var participantID int64
	err = tx.QueryRow(ctx, `
        INSERT INTO conversation_participants (review_id, customer_id, business_id, first_customer_response_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (review_id) DO NOTHING
        RETURNING id`, reviewID, customerID, businessID).Scan(&participantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrConversationExists
	}
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO review_claims (review_id, claimed_by, claim_type, claimed_at)
        VALUES ($1, $2, 'conversation', NOW())
        ON CONFLICT (review_id) DO NOTHING`, reviewID, customerID); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
        UPDATE reviews SET customer_id = $2
        WHERE id = $1 AND customer_id IS NULL`, reviewID, customerID); err != nil {
		return 0, err
	}

	var messageID int64
	err = tx.QueryRow(ctx, `
        INSERT INTO review_conversations (review_id, author_id, author_type, content, message_order)
        VALUES ($1, $2, 'customer', $3, 1)
        RETURNING id`, reviewID, customerID, content).Scan(&messageID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return messageID, nil
}

// AddMessage appends to an existing conversation. The participant row is
// locked so concurrent inserts serialize and message_order stays gapless;
// the turn rule is re-checked inside the transaction, making it the
// authoritative enforcement regardless of what the caller pre-checked.
func (r *Repository) AddMessage(ctx context.Context, reviewID, authorID int64, authorType AuthorType, content string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var p Participant
	var anonymous bool
	var reviewBusinessID int64
	err = tx.QueryRow(ctx, `
        SELECT p.id, p.customer_id, p.business_id, r.is_anonymous, r.business_id
        FROM conversation_participants p
        JOIN reviews r ON r.id = p.review_id
        WHERE p.review_id = $1 AND r.deleted_at IS NULL
        FOR UPDATE OF p`, reviewID).Scan(
		&p.ID, &p.CustomerID, &p.BusinessID, &anonymous, &reviewBusinessID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoConversation
	}
	if err != nil {
		return 0, err
	}
	p.ReviewID = reviewID

	var last Message
	tc := TurnContext{
		ReviewBusinessID: reviewBusinessID,
		ReviewAnonymous:  anonymous,
		Participant:      &p,
	}
	err = tx.QueryRow(ctx, `
        SELECT author_type, message_order
        FROM review_conversations
        WHERE review_id = $1
        ORDER BY message_order DESC
        LIMIT 1`, reviewID).Scan(&last.AuthorType, &last.MessageOrder)
	if err == nil {
		tc.LastMessage = &last
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	if !CanRespond(tc, authorID, authorType) {
		if (authorType == AuthorCustomer && p.CustomerID != authorID) ||
			(authorType == AuthorBusiness && p.BusinessID != authorID) {
			return 0, ErrNotParticipant
		}
		return 0, ErrNotYourTurn
	}

	var messageID int64
	err = tx.QueryRow(ctx, `
        INSERT INTO review_conversations (review_id, author_id, author_type, content, message_order)
        VALUES ($1, $2, $3, $4, (
            SELECT COALESCE(MAX(message_order), 0) + 1
            FROM review_conversations
            WHERE review_id = $1
        ))
        RETURNING id`, reviewID, authorID, authorType, content).Scan(&messageID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return messageID, nil
}

// UpdateMessage edits content in place. Siblings are not renumbered and
// turn order is unaffected: whose-turn always reads message_order, never
// the edit timestamp.
func (r *Repository) UpdateMessage(ctx context.Context, messageID, authorID int64, content string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE review_conversations
        SET content = $3, updated_at = NOW()
        WHERE id = $1 AND author_id = $2`, messageID, authorID, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAuthor
	}
	return nil
}

// DeleteMessage removes a message without renumbering the remaining ones.
func (r *Repository) DeleteMessage(ctx context.Context, messageID, authorID int64) error {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM review_conversations
        WHERE id = $1 AND author_id = $2`, messageID, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAuthor
	}
	return nil
}
