package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
	"github.com/kmorrow/todo-list-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Todo feed event types.
const (
	EventTodoCreated = "todo.created"
	EventTodoUpdated = "todo.updated"
	EventTodoToggled = "todo.toggled"
	EventTodoDeleted = "todo.deleted"
)

// TodoEventPublisher receives change notifications after successful
// mutations. Publishing is fire-and-forget; a failure to deliver never fails
// the mutation.
type TodoEventPublisher interface {
	PublishTodoEvent(userID uuid.UUID, eventType string, todo *domain.Todo)
}

type TodoService struct {
	todoRepo repository.TodoRepository
	events   TodoEventPublisher
}

func NewTodoService(todoRepo repository.TodoRepository, events TodoEventPublisher) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
		events:   events,
	}
}

const (
	defaultListLimit   = 50
	defaultSearchLimit = 20
)

type CreateTodoInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	Tags        []string
	Category    string
}

type UpdateTodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *domain.Priority
	DueDate     *time.Time
	Tags        []string
	Category    *string
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, input CreateTodoInput) (*domain.Todo, error) {
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if input.Category == "" {
		input.Category = domain.DefaultCategory
	}

	if errs := validateTodoFields(input.Title, input.Description, input.Priority, input.Tags); errs.Any() {
		return nil, errs
	}

	todo := &domain.Todo{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        datatypes.JSONSlice[string](input.Tags),
		Category:    input.Category,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}

	s.publish(userID, EventTodoCreated, todo)
	return todo, nil
}

func (s *TodoService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	todo, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

// Update applies the allowed field set to an already-loaded (and
// ownership-checked) todo. The completed/completedAt pair is maintained by
// the model's BeforeSave hook on the way down.
func (s *TodoService) Update(ctx context.Context, todo *domain.Todo, input UpdateTodoInput) (*domain.Todo, error) {
	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.Description != nil {
		todo.Description = *input.Description
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}
	if input.Priority != nil {
		todo.Priority = *input.Priority
	}
	if input.DueDate != nil {
		todo.DueDate = input.DueDate
	}
	if input.Tags != nil {
		todo.Tags = datatypes.JSONSlice[string](input.Tags)
	}
	if input.Category != nil {
		todo.Category = *input.Category
	}

	if errs := validateTodoFields(todo.Title, todo.Description, todo.Priority, todo.Tags); errs.Any() {
		return nil, errs
	}

	todo.UpdatedAt = time.Now()
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, err
	}

	s.publish(todo.UserID, EventTodoUpdated, todo)
	return todo, nil
}

func (s *TodoService) Toggle(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	todo.Completed = !todo.Completed
	todo.UpdatedAt = time.Now()
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, err
	}

	s.publish(todo.UserID, EventTodoToggled, todo)
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, todo *domain.Todo) error {
	if err := s.todoRepo.Delete(ctx, todo.UserID, todo.ID); err != nil {
		return err
	}

	s.publish(todo.UserID, EventTodoDeleted, todo)
	return nil
}

func (s *TodoService) List(ctx context.Context, userID uuid.UUID, filter repository.TodoFilter) (*repository.TodoPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	return s.todoRepo.List(ctx, userID, filter)
}

func (s *TodoService) Stats(ctx context.Context, userID uuid.UUID) (*repository.TodoStats, error) {
	return s.todoRepo.Stats(ctx, userID)
}

func (s *TodoService) Search(ctx context.Context, userID uuid.UUID, query string, limit, skip int) (*repository.TodoPage, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if skip < 0 {
		skip = 0
	}
	return s.todoRepo.List(ctx, userID, repository.TodoFilter{
		Search: query,
		Limit:  limit,
		Skip:   skip,
	})
}

// BulkDelete removes the caller's todos among ids. Ids owned by other users
// are skipped silently, not reported as errors.
func (s *TodoService) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return s.todoRepo.BulkDelete(ctx, userID, ids)
}

func (s *TodoService) BulkUpdate(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, update repository.BulkTodoUpdate) (int64, error) {
	if update.Priority != nil && !update.Priority.Valid() {
		errs := &domain.ValidationErrors{}
		errs.Add("priority must be one of low, medium, high")
		return 0, errs
	}
	return s.todoRepo.BulkUpdate(ctx, userID, ids, update)
}

func (s *TodoService) publish(userID uuid.UUID, eventType string, todo *domain.Todo) {
	if s.events != nil {
		s.events.PublishTodoEvent(userID, eventType, todo)
	}
}

func validateTodoFields(title, description string, priority domain.Priority, tags []string) *domain.ValidationErrors {
	errs := &domain.ValidationErrors{}

	if title == "" {
		errs.Add("title is required")
	} else if len(title) > domain.MaxTitleLength {
		errs.Add(fmt.Sprintf("title must be at most %d characters", domain.MaxTitleLength))
	}
	if len(description) > domain.MaxDescriptionLength {
		errs.Add(fmt.Sprintf("description must be at most %d characters", domain.MaxDescriptionLength))
	}
	if !priority.Valid() {
		errs.Add("priority must be one of low, medium, high")
	}
	for _, tag := range tags {
		if len(tag) > domain.MaxTagLength {
			errs.Add(fmt.Sprintf("tag %q must be at most %d characters", tag, domain.MaxTagLength))
		}
	}

	return errs
}
