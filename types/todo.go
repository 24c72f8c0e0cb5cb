package types

import (
	"time"

	"github.com/google/uuid"
)

// Todo represents a single todo item owned by a user.
type Todo struct {
	// ID is the unique identifier of the todo.
	ID uuid.UUID `json:"id" db:"id"`

	// OwnerID identifies the user who created the todo. It is set at creation
	// and never changes; every read and write is scoped to it.
	OwnerID uuid.UUID `json:"owner_id" db:"owner_id"`

	// Text is the todo's content. Required, non-empty after trimming.
	Text string `json:"text" db:"text"`

	// Completed reports whether the todo has been finished.
	Completed bool `json:"completed" db:"completed"`

	// CompletedAt is the completion time in milliseconds since the epoch.
	// It is non-nil exactly when Completed is true.
	CompletedAt *int64 `json:"completedAt" db:"completed_at"`

	// CreatedAt is the timestamp when the todo was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the todo.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TodoPatch describes the fields a PATCH request may change. Nil fields are
// left untouched.
type TodoPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}
