package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
	"github.com/kmorrow/todo-list-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todoPage struct {
	Todos   []*domain.Todo `json:"todos"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Skip    int            `json:"skip"`
	HasMore bool           `json:"hasMore"`
	Query   string         `json:"query"`
}

func createTodo(t *testing.T, ts *testutil.TestServer, token string, body map[string]interface{}) *domain.Todo {
	t.Helper()

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/todos"), body, token)
	resp := doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var todo domain.Todo
	testutil.AssertJSONResponse(t, resp, &todo)
	return &todo
}

func TestTodoLifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)

	auth := testutil.NewUserBuilder().
		WithUsername("alice").
		WithEmail("alice@x.com").
		WithPassword("secret1").
		Register(t, ts)

	// Create comes back with defaults applied.
	todo := createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "buy milk"})
	assert.Equal(t, "buy milk", todo.Title)
	assert.False(t, todo.Completed)
	assert.Nil(t, todo.CompletedAt)
	assert.Equal(t, domain.PriorityMedium, todo.Priority)
	assert.Equal(t, "general", todo.Category)

	// Toggle to completed stamps completedAt.
	req := testutil.CreateAuthenticatedRequest(t, http.MethodPatch, ts.APIURL("/todos/"+todo.ID.String()+"/toggle"), nil, auth.AccessToken)
	resp := doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var toggled domain.Todo
	testutil.AssertJSONResponse(t, resp, &toggled)
	resp.Body.Close()
	assert.True(t, toggled.Completed)
	assert.NotNil(t, toggled.CompletedAt)

	// Toggle back clears it.
	req = testutil.CreateAuthenticatedRequest(t, http.MethodPatch, ts.APIURL("/todos/"+todo.ID.String()+"/toggle"), nil, auth.AccessToken)
	resp = doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	testutil.AssertJSONResponse(t, resp, &toggled)
	resp.Body.Close()
	assert.False(t, toggled.Completed)
	assert.Nil(t, toggled.CompletedAt)

	// Update allowed fields.
	req = testutil.CreateAuthenticatedRequest(t, http.MethodPut, ts.APIURL("/todos/"+todo.ID.String()), map[string]interface{}{
		"title":    "buy oat milk",
		"priority": "high",
		"tags":     []string{"errand"},
	}, auth.AccessToken)
	resp = doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var updated domain.Todo
	testutil.AssertJSONResponse(t, resp, &updated)
	resp.Body.Close()
	assert.Equal(t, "buy oat milk", updated.Title)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)

	// Delete.
	req = testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.APIURL("/todos/"+todo.ID.String()), nil, auth.AccessToken)
	resp = doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos/"+todo.ID.String()), nil, auth.AccessToken)
	resp = doRequest(t, req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTodoListSortByPriority(t *testing.T) {
	ts := testutil.NewTestServer(t)

	auth := testutil.NewUserBuilder().Register(t, ts)

	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "low one", "priority": "low"})
	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "medium one", "priority": "medium"})
	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "high one", "priority": "high"})

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos?sortBy=priority"), nil, auth.AccessToken)
	resp := doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var page todoPage
	testutil.AssertJSONResponse(t, resp, &page)
	require.Len(t, page.Todos, 3)
	assert.Equal(t, "high one", page.Todos[0].Title)
	assert.Equal(t, "medium one", page.Todos[1].Title)
	assert.Equal(t, "low one", page.Todos[2].Title)
}

func TestTodoListPaginationAndDefaults(t *testing.T) {
	ts := testutil.NewTestServer(t)

	auth := testutil.NewUserBuilder().Register(t, ts)

	for i := 0; i < 3; i++ {
		createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "todo"})
		// Distinct creation times keep the default ordering deterministic.
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("limit and skip drive hasMore", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos?limit=2&skip=0"), nil, auth.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()

		var page todoPage
		testutil.AssertJSONResponse(t, resp, &page)
		assert.Len(t, page.Todos, 2)
		assert.Equal(t, int64(3), page.Total)
		assert.True(t, page.HasMore)
	})

	t.Run("non-numeric limit falls back to the default", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos?limit=banana"), nil, auth.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var page todoPage
		testutil.AssertJSONResponse(t, resp, &page)
		assert.Equal(t, 50, page.Limit)
		assert.Len(t, page.Todos, 3)
		assert.False(t, page.HasMore)
	})
}

func TestTodoOwnership(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice := testutil.NewUserBuilder().Register(t, ts)
	mallory := testutil.NewUserBuilder().Register(t, ts)

	todo := createTodo(t, ts, alice.AccessToken, map[string]interface{}{"title": "private"})

	t.Run("other user gets 403", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos/"+todo.ID.String()), nil, mallory.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing id gets 404", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos/"+uuid.New().String()), nil, mallory.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("listing never leaks foreign todos", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos"), nil, mallory.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()

		var page todoPage
		testutil.AssertJSONResponse(t, resp, &page)
		assert.Empty(t, page.Todos)
		assert.Zero(t, page.Total)
	})
}

func TestTodoBulkDelete(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice := testutil.NewUserBuilder().Register(t, ts)
	mallory := testutil.NewUserBuilder().Register(t, ts)

	aliceTodo := createTodo(t, ts, alice.AccessToken, map[string]interface{}{"title": "mine"})
	malloryTodo := createTodo(t, ts, mallory.AccessToken, map[string]interface{}{"title": "theirs"})

	t.Run("foreign ids delete nothing and do not error", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.APIURL("/todos"), map[string]interface{}{
			"ids": []string{aliceTodo.ID.String(), malloryTodo.ID.String()},
		}, mallory.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body struct {
			Deleted int64 `json:"deleted"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, int64(1), body.Deleted, "only mallory's own todo goes")

		// Alice's todo survives.
		req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos/"+aliceTodo.ID.String()), nil, alice.AccessToken)
		resp2 := doRequest(t, req)
		defer resp2.Body.Close()
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
	})

	t.Run("empty id list is a 400", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.APIURL("/todos"), map[string]interface{}{
			"ids": []string{},
		}, alice.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTodoBulkUpdate(t *testing.T) {
	ts := testutil.NewTestServer(t)

	auth := testutil.NewUserBuilder().Register(t, ts)

	first := createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "one"})
	second := createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "two"})

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPatch, ts.APIURL("/todos/bulk-update"), map[string]interface{}{
		"ids": []string{first.ID.String(), second.ID.String()},
		"updates": map[string]interface{}{
			"completed": true,
			"priority":  "high",
		},
	}, auth.AccessToken)
	resp := doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body struct {
		Modified int64 `json:"modified"`
	}
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, int64(2), body.Modified)

	// The pair invariant holds on the bulk path too.
	getReq := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos/"+first.ID.String()), nil, auth.AccessToken)
	getResp := doRequest(t, getReq)
	defer getResp.Body.Close()

	var got domain.Todo
	testutil.AssertJSONResponse(t, getResp, &got)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
}

func TestTodoSearch(t *testing.T) {
	ts := testutil.NewTestServer(t)

	auth := testutil.NewUserBuilder().Register(t, ts)

	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "Buy groceries"})
	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "notes", "description": "grocery list draft"})
	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "walk dog"})

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos/search/grocer"), nil, auth.AccessToken)
	resp := doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var page todoPage
	testutil.AssertJSONResponse(t, resp, &page)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, "grocer", page.Query)
}

func TestTodoStats(t *testing.T) {
	ts := testutil.NewTestServer(t)

	auth := testutil.NewUserBuilder().Register(t, ts)

	yesterday := time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "done", "priority": "low"})
	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "open"})
	createTodo(t, ts, auth.AccessToken, map[string]interface{}{"title": "late", "dueDate": yesterday})

	// Complete the first one through the API.
	var firstID string
	{
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos?priority=low"), nil, auth.AccessToken)
		resp := doRequest(t, req)
		var page todoPage
		testutil.AssertJSONResponse(t, resp, &page)
		resp.Body.Close()
		require.Len(t, page.Todos, 1)
		firstID = page.Todos[0].ID.String()
	}
	req := testutil.CreateAuthenticatedRequest(t, http.MethodPatch, ts.APIURL("/todos/"+firstID+"/toggle"), nil, auth.AccessToken)
	resp := doRequest(t, req)
	resp.Body.Close()

	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/todos/stats"), nil, auth.AccessToken)
	resp = doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var stats struct {
		Total     int64 `json:"total"`
		Completed int64 `json:"completed"`
		Pending   int64 `json:"pending"`
		Overdue   int64 `json:"overdue"`
	}
	testutil.AssertJSONResponse(t, resp, &stats)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Overdue)
}

func TestUnknownRouteListsEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.BaseURL() + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error              string   `json:"error"`
		AvailableEndpoints []string `json:"availableEndpoints"`
	}
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Contains(t, body.AvailableEndpoints, "GET /api/todos")
	assert.Contains(t, body.AvailableEndpoints, "POST /api/auth/login")
}

func TestHealth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/health"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}
