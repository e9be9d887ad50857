package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxTagLength         = 30
	DefaultCategory      = "general"
)

type Todo struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID                   `json:"userId" gorm:"type:uuid;not null;index"`
	Title       string                      `json:"title" gorm:"not null"`
	Description string                      `json:"description"`
	Completed   bool                        `json:"completed" gorm:"not null;default:false"`
	Priority    Priority                    `json:"priority" gorm:"not null;default:'medium'"`
	DueDate     *time.Time                  `json:"dueDate"`
	CompletedAt *time.Time                  `json:"completedAt"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Category    string                      `json:"category" gorm:"not null;default:'general'"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`

	// Relations
	Owner *User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeSave keeps completedAt in lockstep with completed: non-null iff the
// todo is completed. Batch updates through Updates(map) bypass gorm hooks, so
// the bulk-update path maintains the pair itself.
func (t *Todo) BeforeSave(tx *gorm.DB) error {
	if t.Completed && t.CompletedAt == nil {
		now := time.Now()
		t.CompletedAt = &now
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
	return nil
}

// OwnerID satisfies the middleware ownership contract.
func (t *Todo) OwnerID() uuid.UUID {
	return t.UserID
}
