package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
	active   bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
		active:   true,
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Deactivated marks the user as deactivated
func (b *UserBuilder) Deactivated() *UserBuilder {
	b.active = false
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		Preferences:  datatypes.JSONMap{},
		IsActive:     b.active,
		LastActiveAt: time.Now(),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// BuildAndAuthenticate registers the user via the API and returns the user
// with its access token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	authResp := b.Register(t, ts)
	return authResp.User, authResp.AccessToken
}

// Register registers the user via the API and returns the full token pair.
func (b *UserBuilder) Register(t *testing.T, ts *TestServer) *AuthResponse {
	t.Helper()

	reqBody := map[string]string{
		"username": b.username,
		"email":    b.email,
		"password": b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return &authResp
}

// TodoBuilder creates test todos with a builder pattern
type TodoBuilder struct {
	owner       *domain.User
	title       string
	description string
	completed   bool
	priority    domain.Priority
	dueDate     *time.Time
	tags        []string
	category    string
	createdAt   time.Time
}

// NewTodoBuilder creates a new TodoBuilder with default values
func NewTodoBuilder() *TodoBuilder {
	return &TodoBuilder{
		title:     fmt.Sprintf("test todo %s", uuid.New().String()[:8]),
		priority:  domain.PriorityMedium,
		category:  domain.DefaultCategory,
		createdAt: time.Now(),
	}
}

// WithOwner sets the owning user
func (b *TodoBuilder) WithOwner(user *domain.User) *TodoBuilder {
	b.owner = user
	return b
}

// WithTitle sets the title
func (b *TodoBuilder) WithTitle(title string) *TodoBuilder {
	b.title = title
	return b
}

// WithDescription sets the description
func (b *TodoBuilder) WithDescription(description string) *TodoBuilder {
	b.description = description
	return b
}

// Completed marks the todo as completed
func (b *TodoBuilder) Completed() *TodoBuilder {
	b.completed = true
	return b
}

// WithPriority sets the priority
func (b *TodoBuilder) WithPriority(priority domain.Priority) *TodoBuilder {
	b.priority = priority
	return b
}

// WithDueDate sets the due date
func (b *TodoBuilder) WithDueDate(due time.Time) *TodoBuilder {
	b.dueDate = &due
	return b
}

// WithTags sets the tag list
func (b *TodoBuilder) WithTags(tags ...string) *TodoBuilder {
	b.tags = tags
	return b
}

// WithCategory sets the category
func (b *TodoBuilder) WithCategory(category string) *TodoBuilder {
	b.category = category
	return b
}

// WithCreatedAt sets the creation timestamp, useful for sort-order tests
func (b *TodoBuilder) WithCreatedAt(created time.Time) *TodoBuilder {
	b.createdAt = created
	return b
}

// Build creates the todo in the database
func (b *TodoBuilder) Build(t *testing.T, db *gorm.DB) *domain.Todo {
	t.Helper()

	if b.owner == nil {
		t.Fatalf("todo builder requires an owner")
	}

	todo := &domain.Todo{
		ID:          uuid.New(),
		UserID:      b.owner.ID,
		Title:       b.title,
		Description: b.description,
		Completed:   b.completed,
		Priority:    b.priority,
		DueDate:     b.dueDate,
		Tags:        datatypes.JSONSlice[string](b.tags),
		Category:    b.category,
		CreatedAt:   b.createdAt,
		UpdatedAt:   b.createdAt,
	}

	if err := db.Create(todo).Error; err != nil {
		t.Fatalf("failed to create todo: %v", err)
	}

	return todo
}

// CreateAuthenticatedRequest builds an HTTP request carrying a bearer token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
