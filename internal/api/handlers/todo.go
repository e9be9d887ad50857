package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/api/middleware"
	"github.com/kmorrow/todo-list-api/internal/domain"
	"github.com/kmorrow/todo-list-api/internal/repository"
	"github.com/kmorrow/todo-list-api/internal/service"
)

type TodoHandler struct {
	todoService *service.TodoService
}

func NewTodoHandler(todoService *service.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

type CreateTodoRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	DueDate     *time.Time      `json:"dueDate"`
	Tags        []string        `json:"tags"`
	Category    string          `json:"category"`
}

type UpdateTodoRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Completed   *bool            `json:"completed"`
	Priority    *domain.Priority `json:"priority"`
	DueDate     *time.Time       `json:"dueDate"`
	Tags        []string         `json:"tags"`
	Category    *string          `json:"category"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type BulkUpdateRequest struct {
	IDs     []uuid.UUID `json:"ids"`
	Updates struct {
		Completed *bool            `json:"completed"`
		Priority  *domain.Priority `json:"priority"`
		Category  *string          `json:"category"`
	} `json:"updates"`
}

type TodoPageResponse struct {
	Todos   []*domain.Todo `json:"todos"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Skip    int            `json:"skip"`
	HasMore bool           `json:"hasMore"`
	Query   string         `json:"query,omitempty"`
}

func pageResponse(page *repository.TodoPage, query string) TodoPageResponse {
	todos := page.Items
	if todos == nil {
		todos = []*domain.Todo{}
	}
	return TodoPageResponse{
		Todos:   todos,
		Total:   page.Total,
		Limit:   page.Limit,
		Skip:    page.Skip,
		HasMore: page.HasMore,
		Query:   query,
	}
}

// parseListFilter maps query parameters onto the repository filter set.
// Non-numeric limit/skip silently fall back to their defaults; unknown
// sortBy values fall through to the default sort downstream.
func parseListFilter(values url.Values) repository.TodoFilter {
	filter := repository.TodoFilter{
		Priority: domain.Priority(values.Get("priority")),
		Category: values.Get("category"),
		Search:   values.Get("search"),
		SortBy:   values.Get("sortBy"),
		Limit:    parseNonNegative(values.Get("limit"), 50),
		Skip:     parseNonNegative(values.Get("skip"), 0),
	}

	if raw := values.Get("completed"); raw != "" {
		if completed, err := strconv.ParseBool(raw); err == nil {
			filter.Completed = &completed
		}
	}
	filter.StartDate = parseTime(values.Get("startDate"))
	filter.EndDate = parseTime(values.Get("endDate"))
	filter.DueBefore = parseTime(values.Get("dueBefore"))

	return filter
}

func parseNonNegative(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := parseListFilter(r.URL.Query())
	page, err := h.todoService.List(r.Context(), user.ID, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pageResponse(page, ""))
}

func (h *TodoHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.todoService.Stats(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	todo, ok := middleware.GetTodo(r.Context())
	if !ok {
		respondError(w, http.StatusNotFound, "Todo not found")
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTodoRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := h.todoService.Create(r.Context(), user.ID, service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		Category:    req.Category,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	todo, ok := middleware.GetTodo(r.Context())
	if !ok {
		respondError(w, http.StatusNotFound, "Todo not found")
		return
	}

	var req UpdateTodoRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.todoService.Update(r.Context(), todo, service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		Category:    req.Category,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	todo, ok := middleware.GetTodo(r.Context())
	if !ok {
		respondError(w, http.StatusNotFound, "Todo not found")
		return
	}

	updated, err := h.todoService.Toggle(r.Context(), todo)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	todo, ok := middleware.GetTodo(r.Context())
	if !ok {
		respondError(w, http.StatusNotFound, "Todo not found")
		return
	}

	if err := h.todoService.Delete(r.Context(), todo); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// BulkDelete removes the caller's todos among the supplied ids. Ids owned by
// someone else are skipped silently.
func (h *TodoHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BulkDeleteRequest
	if err := decodeStrict(r, &req); err != nil || len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "A non-empty ids list is required")
		return
	}

	deleted, err := h.todoService.BulkDelete(r.Context(), user.ID, req.IDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *TodoHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BulkUpdateRequest
	if err := decodeStrict(r, &req); err != nil || len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "A non-empty ids list is required")
		return
	}

	modified, err := h.todoService.BulkUpdate(r.Context(), user.ID, req.IDs, repository.BulkTodoUpdate{
		Completed: req.Updates.Completed,
		Priority:  req.Updates.Priority,
		Category:  req.Updates.Category,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"modified": modified})
}

func (h *TodoHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := chi.URLParam(r, "query")
	limit := parseNonNegative(r.URL.Query().Get("limit"), 20)
	skip := parseNonNegative(r.URL.Query().Get("skip"), 0)

	page, err := h.todoService.Search(r.Context(), user.ID, query, limit, skip)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pageResponse(page, query))
}
