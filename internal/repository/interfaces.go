package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	TouchLastActive(ctx context.Context, id uuid.UUID) error
}

type RefreshTokenRepository interface {
	Add(ctx context.Context, token *domain.RefreshToken) error
	Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	Delete(ctx context.Context, userID uuid.UUID, token string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// TodoFilter is the full filter set accepted by the list operation. Zero
// values mean "not filtered"; Completed uses a pointer because false is a
// meaningful filter value.
type TodoFilter struct {
	Completed *bool
	Priority  domain.Priority
	Category  string
	Search    string
	SortBy    string
	Limit     int
	Skip      int
	StartDate *time.Time
	EndDate   *time.Time
	DueBefore *time.Time
}

// TodoPage is one page of results plus the pagination bookkeeping the API
// reports alongside it.
type TodoPage struct {
	Items   []*domain.Todo
	Total   int64
	Limit   int
	Skip    int
	HasMore bool
}

type TodoStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
	Overdue   int64 `json:"overdue"`
}

// BulkTodoUpdate is the whitelisted field set for bulk updates. Anything not
// representable here is dropped before it reaches the database.
type BulkTodoUpdate struct {
	Completed *bool
	Priority  *domain.Priority
	Category  *string
}

func (u BulkTodoUpdate) Empty() bool {
	return u.Completed == nil && u.Priority == nil && u.Category == nil
}

type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter TodoFilter) (*TodoPage, error)
	Stats(ctx context.Context, userID uuid.UUID) (*TodoStats, error)
	BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	BulkUpdate(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, update BulkTodoUpdate) (int64, error)
}

type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Todo         TodoRepository
}
