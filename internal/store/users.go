package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail       = errors.New("a user with that email already exists")
	ErrDuplicatePhoneNumber = errors.New("a user with that phone number already exists")
)

type UserType string

const (
	UserBusiness UserType = "business"
	UserCustomer UserType = "customer"
	UserAdmin    UserType = "admin"
)

type User struct {
	ID           int64      `json:"id"`
	Type         UserType   `json:"type"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	BusinessName NullString `json:"business_name" swaggertype:"string"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Address      NullString `json:"address" swaggertype:"string"`
	City         NullString `json:"city" swaggertype:"string"`
	State        NullString `json:"state" swaggertype:"string"`
	Zipcode      NullString `json:"zipcode" swaggertype:"string"`
	AvatarURL    NullString `json:"avatar_url" swaggertype:"string"`
	Password     password   `json:"-"`
	RefreshToken string     `json:"-"`
	IsVerified   bool       `json:"is_verified"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

/// FullName is the display name used for matching: the business name for
// business accounts, first + last otherwise.
func (u *User) FullName() string {
	if u.Type == UserBusiness && u.BusinessName.Valid {
		return u.BusinessName.Value
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.text = &text
	p.hash = hash
	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type UsersStore struct {
	db *pgxpool.Pool
}

func (s *UsersStore) Create(ctx context.Context, user *User) error {
	const query = `
        INSERT INTO users (type, first_name, last_name, business_name, email, phone, address, city, state, zipcode, password)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		user.Type, user.FirstName, user.LastName, nullable(user.BusinessName),
		user.Email, user.Phone, nullable(user.Address), nullable(user.City),
		nullable(user.State), nullable(user.Zipcode), user.Password.hash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		switch {
		case strings.Contains(err.Error(), "users_email_key"):
			return ErrDuplicateEmail
		case strings.Contains(err.Error(), "users_phone_key"):
			return ErrDuplicatePhoneNumber
		default:
			return err
		}
	}
	return nil
}

func (s *UsersStore) GetByID(ctx context.Context, userID int64) (*User, error) {
	const query = `
        SELECT id, type, first_name, last_name, business_name, email, phone,
               address, city, state, zipcode, avatar_url, password, is_verified,
               created_at, updated_at
        FROM users
        WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.scanUser(s.db.QueryRow(ctx, query, userID))
}

func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
        SELECT id, type, first_name, last_name, business_name, email, phone,
               address, city, state, zipcode, avatar_url, password, is_verified,
               created_at, updated_at
        FROM users
        WHERE email = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.scanUser(s.db.QueryRow(ctx, query, email))
}

// GetByPhone finds the account a phone number belongs to, if any. Used
// to tip off customers when a review names their number.
func (s *UsersStore) GetByPhone(ctx context.Context, phone string) (*User, error) {
	const query = `
        SELECT id, type, first_name, last_name, business_name, email, phone,
               address, city, state, zipcode, avatar_url, password, is_verified,
               created_at, updated_at
        FROM users
        WHERE phone = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.scanUser(s.db.QueryRow(ctx, query, phone))
}

func (s *UsersStore) scanUser(row pgx.Row) (*User, error) {
	var user User
	var businessName, address, city, state, zipcode, avatar *string
	err := row.Scan(
		&user.ID, &user.Type, &user.FirstName, &user.LastName, &businessName,
		&user.Email, &user.Phone, &address, &city, &state, &zipcode, &avatar,
		&user.Password.hash, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.BusinessName = fromPtr(businessName)
	user.Address = fromPtr(address)
	user.City = fromPtr(city)
	user.State = fromPtr(state)
	user.Zipcode = fromPtr(zipcode)
	user.AvatarURL = fromPtr(avatar)
	return &user, nil
}

// UpdateUser applies a dynamic set of column updates. Only whitelisted
// profile columns are accepted; everything else is rejected.
func (s *UsersStore) UpdateUser(ctx context.Context, userID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"first_name": true, "last_name": true, "business_name": true,
		"phone": true, "address": true, "city": true, "state": true,
		"zipcode": true, "is_verified": true,
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		if !allowed[col] {
			return fmt.Errorf("column %q cannot be updated", col)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), i)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UsersStore) SetAvatar(ctx context.Context, userID int64, url string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2`, url, userID)
	return err
}

func (s *UsersStore) GetAvatarURL(ctx context.Context, userID int64) (string, error) {
	var url *string
	err := s.db.QueryRow(ctx, `SELECT avatar_url FROM users WHERE id = $1`, userID).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if url == nil {
		return "", nil
	}
	return *url, nil
}

func (s *UsersStore) SetRefreshToken(ctx context.Context, userID int64, tokenHash string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET refresh_token = $1 WHERE id = $2`, tokenHash, userID)
	return err
}

// GetRefreshToken returns the stored refresh token hash for a user. An
// empty string means no session is active.
func (s *UsersStore) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	var tokenHash *string
	err := s.db.QueryRow(ctx, `SELECT refresh_token FROM users WHERE id = $1`, userID).Scan(&tokenHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if tokenHash == nil {
		return "", nil
	}
	return *tokenHash, nil
}

func (s *UsersStore) ClearRefreshToken(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET refresh_token = NULL WHERE id = $1`, userID)
	return err
}

func nullable(ns NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.Value
}

func fromPtr(p *string) NullString {
	if p == nil {
		return NullString{}
	}
	return NullString{Value: *p, Valid: true}
}
