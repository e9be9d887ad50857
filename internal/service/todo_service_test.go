package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
	"github.com/kmorrow/todo-list-api/internal/repository"
	"github.com/kmorrow/todo-list-api/internal/repository/postgres"
	"github.com/kmorrow/todo-list-api/internal/service"
	"github.com/kmorrow/todo-list-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTodoService(t *testing.T) (*service.TodoService, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	return service.NewTodoService(repos.Todo, nil), testDB
}

func TestTodoService_Create(t *testing.T) {
	todoService, testDB := newTodoService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	t.Run("defaults", func(t *testing.T) {
		todo, err := todoService.Create(ctx, user.ID, service.CreateTodoInput{
			Title: "buy milk",
		})
		require.NoError(t, err)

		assert.Equal(t, "buy milk", todo.Title)
		assert.Equal(t, user.ID, todo.UserID)
		assert.False(t, todo.Completed)
		assert.Nil(t, todo.CompletedAt)
		assert.Equal(t, domain.PriorityMedium, todo.Priority)
		assert.Equal(t, "general", todo.Category)
	})

	t.Run("validation failures", func(t *testing.T) {
		longTitle := make([]byte, domain.MaxTitleLength+1)
		for i := range longTitle {
			longTitle[i] = 'a'
		}

		tests := []struct {
			name    string
			input   service.CreateTodoInput
			message string
		}{
			{
				name:    "missing title",
				input:   service.CreateTodoInput{},
				message: "title is required",
			},
			{
				name:    "title too long",
				input:   service.CreateTodoInput{Title: string(longTitle)},
				message: "title must be at most 200 characters",
			},
			{
				name:    "bad priority",
				input:   service.CreateTodoInput{Title: "ok", Priority: "urgent"},
				message: "priority must be one of low, medium, high",
			},
			{
				name:    "tag too long",
				input:   service.CreateTodoInput{Title: "ok", Tags: []string{"this-tag-is-way-too-long-to-be-allowed"}},
				message: "must be at most 30 characters",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := todoService.Create(ctx, user.ID, tt.input)

				var errs *domain.ValidationErrors
				require.ErrorAs(t, err, &errs)
				assert.Contains(t, strings.Join(errs.Messages, "; "), tt.message)
			})
		}
	})
}

func TestTodoService_Toggle(t *testing.T) {
	todoService, testDB := newTodoService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	todo := testutil.NewTodoBuilder().WithOwner(user).Build(t, testDB.DB)

	// Pending -> Completed stamps completedAt.
	toggled, err := todoService.Toggle(ctx, todo)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	require.NotNil(t, toggled.CompletedAt)

	// Completed -> Pending clears it.
	toggled, err = todoService.Toggle(ctx, toggled)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
	assert.Nil(t, toggled.CompletedAt)
}

func TestTodoService_Update(t *testing.T) {
	todoService, testDB := newTodoService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	t.Run("title change leaves completedAt untouched", func(t *testing.T) {
		todo := testutil.NewTodoBuilder().WithOwner(user).Completed().Build(t, testDB.DB)
		require.NotNil(t, todo.CompletedAt)
		stamped := *todo.CompletedAt

		newTitle := "renamed"
		updated, err := todoService.Update(ctx, todo, service.UpdateTodoInput{Title: &newTitle})
		require.NoError(t, err)

		assert.Equal(t, "renamed", updated.Title)
		assert.True(t, updated.Completed)
		require.NotNil(t, updated.CompletedAt)
		assert.WithinDuration(t, stamped, *updated.CompletedAt, time.Second)
	})

	t.Run("completing via update stamps completedAt", func(t *testing.T) {
		todo := testutil.NewTodoBuilder().WithOwner(user).Build(t, testDB.DB)

		completed := true
		updated, err := todoService.Update(ctx, todo, service.UpdateTodoInput{Completed: &completed})
		require.NoError(t, err)

		assert.True(t, updated.Completed)
		assert.NotNil(t, updated.CompletedAt)
	})

	t.Run("uncompleting via update clears completedAt", func(t *testing.T) {
		todo := testutil.NewTodoBuilder().WithOwner(user).Completed().Build(t, testDB.DB)

		completed := false
		updated, err := todoService.Update(ctx, todo, service.UpdateTodoInput{Completed: &completed})
		require.NoError(t, err)

		assert.False(t, updated.Completed)
		assert.Nil(t, updated.CompletedAt)
	})

	t.Run("validation applies to the merged record", func(t *testing.T) {
		todo := testutil.NewTodoBuilder().WithOwner(user).Build(t, testDB.DB)

		empty := ""
		_, err := todoService.Update(ctx, todo, service.UpdateTodoInput{Title: &empty})

		var errs *domain.ValidationErrors
		assert.ErrorAs(t, err, &errs)
	})
}

func TestTodoService_Search(t *testing.T) {
	todoService, testDB := newTodoService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.NewTodoBuilder().WithOwner(user).WithTitle("Buy groceries").Build(t, testDB.DB)
	testutil.NewTodoBuilder().WithOwner(user).WithTitle("unrelated").WithDescription("grocery run notes").Build(t, testDB.DB)
	testutil.NewTodoBuilder().WithOwner(user).WithTitle("walk the dog").Build(t, testDB.DB)

	page, err := todoService.Search(ctx, user.ID, "GROCER", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 20, page.Limit, "search uses its own default limit")
	assert.False(t, page.HasMore)
}

func TestTodoService_BulkUpdate(t *testing.T) {
	todoService, testDB := newTodoService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	todo := testutil.NewTodoBuilder().WithOwner(user).Build(t, testDB.DB)

	t.Run("invalid priority rejected", func(t *testing.T) {
		bad := domain.Priority("urgent")
		_, err := todoService.BulkUpdate(ctx, user.ID, []uuid.UUID{todo.ID}, repository.BulkTodoUpdate{Priority: &bad})

		var errs *domain.ValidationErrors
		assert.ErrorAs(t, err, &errs)
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		modified, err := todoService.BulkUpdate(ctx, user.ID, []uuid.UUID{todo.ID}, repository.BulkTodoUpdate{})
		require.NoError(t, err)
		assert.Zero(t, modified)
	})
}
