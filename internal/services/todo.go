package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gotodo/apiserver/internal/mq"
	"github.com/gotodo/apiserver/types"
)

// Event types published to the configured broker.
const (
	EventTodoCreated   = "todo.created"
	EventTodoCompleted = "todo.completed"
	EventTodoDeleted   = "todo.deleted"
)

// ErrTextRequired is returned when a todo's text is empty after trimming.
var ErrTextRequired = errors.New("text is required")

// TodoRepository defines persistence operations for todos.
type TodoRepository interface {
	Create(ctx context.Context, todo types.Todo) (types.Todo, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Todo, error)
	GetByOwner(ctx context.Context, id, ownerID uuid.UUID) (types.Todo, error)
	Update(ctx context.Context, todo types.Todo) (types.Todo, error)
	DeleteByOwner(ctx context.Context, id, ownerID uuid.UUID) (types.Todo, error)
}

// TodoEvent is the payload published for todo lifecycle events.
type TodoEvent struct {
	Type string     `json:"type"`
	Todo types.Todo `json:"todo"`
}

// TodoService encapsulates todo use-cases. Every operation is scoped to the
// owning user's id. Events is optional; a nil MQ disables publishing.
type TodoService struct {
	repo    TodoRepository
	events  *mq.MQ
	channel string
}

func NewTodoService(repo TodoRepository, events *mq.MQ, channel string) *TodoService {
	return &TodoService{repo: repo, events: events, channel: channel}
}

// Create stores a new todo for the owner. Fails with ErrTextRequired when the
// text is empty after trimming.
func (s *TodoService) Create(ctx context.Context, ownerID uuid.UUID, text string) (types.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Todo{}, ErrTextRequired
	}

	todo, err := s.repo.Create(ctx, types.Todo{
		OwnerID: ownerID,
		Text:    text,
	})
	if err != nil {
		return types.Todo{}, err
	}

	s.publish(ctx, EventTodoCreated, todo)
	return todo, nil
}

// List returns the owner's todos in insertion order.
func (s *TodoService) List(ctx context.Context, ownerID uuid.UUID) ([]types.Todo, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns the todo only when it belongs to the owner.
func (s *TodoService) Get(ctx context.Context, ownerID, id uuid.UUID) (types.Todo, error) {
	return s.repo.GetByOwner(ctx, id, ownerID)
}

// Update applies the patch to the owner's todo. Completing a todo whose
// completion time is unset stamps it with the current time in milliseconds;
// un-completing always clears it.
func (s *TodoService) Update(ctx context.Context, ownerID, id uuid.UUID, patch types.TodoPatch) (types.Todo, error) {
	todo, err := s.repo.GetByOwner(ctx, id, ownerID)
	if err != nil {
		return types.Todo{}, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return types.Todo{}, ErrTextRequired
		}
		todo.Text = text
	}

	completedNow := false
	if patch.Completed != nil {
		if *patch.Completed {
			if todo.CompletedAt == nil {
				now := time.Now().UnixMilli()
				todo.CompletedAt = &now
				completedNow = true
			}
			todo.Completed = true
		} else {
			todo.Completed = false
			todo.CompletedAt = nil
		}
	}

	todo, err = s.repo.Update(ctx, todo)
	if err != nil {
		return types.Todo{}, err
	}

	if completedNow {
		s.publish(ctx, EventTodoCompleted, todo)
	}
	return todo, nil
}

// Delete removes the owner's todo and returns the deleted record.
func (s *TodoService) Delete(ctx context.Context, ownerID, id uuid.UUID) (types.Todo, error) {
	todo, err := s.repo.DeleteByOwner(ctx, id, ownerID)
	if err != nil {
		return types.Todo{}, err
	}

	s.publish(ctx, EventTodoDeleted, todo)
	return todo, nil
}

// publish is best-effort: a broker failure never fails the request.
func (s *TodoService) publish(ctx context.Context, eventType string, todo types.Todo) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(TodoEvent{Type: eventType, Todo: todo})
	if err != nil {
		return
	}
	_, _ = s.events.Publish(ctx, s.channel, data, map[string]string{"event": eventType})
}
