package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gotodo/apiserver/types"
)

const pqUniqueViolation = "23505"

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	const query = `
		SELECT id, email, password_hash, tokens, created_at, updated_at
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, email, password_hash, tokens, created_at, updated_at
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now

	tokensJSON, err := json.Marshal(tokensOrEmpty(user.Tokens))
	if err != nil {
		return types.User{}, err
	}

	const query = `
		INSERT INTO users (id, email, password_hash, tokens, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		tokensJSON,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return types.User{}, ErrDuplicateEmail
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdateTokens persists the user's current token list.
func (r *UserRepository) UpdateTokens(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	tokensJSON, err := json.Marshal(tokensOrEmpty(user.Tokens))
	if err != nil {
		return types.User{}, err
	}

	const query = `
		UPDATE users
		SET tokens = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, tokensJSON, user.UpdatedAt, user.ID)
	if err != nil {
		return types.User{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	var tokensJSON []byte
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&tokensJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	_ = json.Unmarshal(tokensJSON, &user.Tokens)
	return user, nil
}

func tokensOrEmpty(tokens []types.UserToken) []types.UserToken {
	if tokens == nil {
		return []types.UserToken{}
	}
	return tokens
}
