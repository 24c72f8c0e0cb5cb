package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gotodo/apiserver/types"
)

// TodoRepository handles persistence for todos.
type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo types.Todo) (types.Todo, error) {
	now := time.Now()
	todo.ID = uuid.New()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	const query = `
		INSERT INTO todos (id, owner_id, text, completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		todo.ID,
		todo.OwnerID,
		todo.Text,
		todo.Completed,
		todo.CompletedAt,
		todo.CreatedAt,
		todo.UpdatedAt,
	); err != nil {
		return types.Todo{}, err
	}
	return todo, nil
}

// ListByOwner returns the owner's todos in insertion order. The seq column is
// a serial assigned at insert, so ordering holds even for rows created within
// the same timestamp tick.
func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Todo, error) {
	const query = `
		SELECT id, owner_id, text, completed, completed_at, created_at, updated_at
		FROM todos
		WHERE owner_id = $1
		ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]types.Todo, 0)
	for rows.Next() {
		var todo types.Todo
		if err := rows.Scan(
			&todo.ID,
			&todo.OwnerID,
			&todo.Text,
			&todo.Completed,
			&todo.CompletedAt,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *TodoRepository) GetByOwner(ctx context.Context, id, ownerID uuid.UUID) (types.Todo, error) {
	const query = `
		SELECT id, owner_id, text, completed, completed_at, created_at, updated_at
		FROM todos
		WHERE id = $1 AND owner_id = $2`
	var todo types.Todo
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&todo.ID,
		&todo.OwnerID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, err
	}
	return todo, nil
}

func (r *TodoRepository) Update(ctx context.Context, todo types.Todo) (types.Todo, error) {
	todo.UpdatedAt = time.Now()

	const query = `
		UPDATE todos
		SET text = $1,
			completed = $2,
			completed_at = $3,
			updated_at = $4
		WHERE id = $5 AND owner_id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		todo.Text,
		todo.Completed,
		todo.CompletedAt,
		todo.UpdatedAt,
		todo.ID,
		todo.OwnerID,
	)
	if err != nil {
		return types.Todo{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Todo{}, err
	}
	if affected == 0 {
		return types.Todo{}, ErrNotFound
	}
	return todo, nil
}

// DeleteByOwner removes the todo and returns the deleted record.
func (r *TodoRepository) DeleteByOwner(ctx context.Context, id, ownerID uuid.UUID) (types.Todo, error) {
	const query = `
		DELETE FROM todos
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, text, completed, completed_at, created_at, updated_at`
	var todo types.Todo
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&todo.ID,
		&todo.OwnerID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, err
	}
	return todo, nil
}
