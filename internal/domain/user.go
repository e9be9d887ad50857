package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string            `json:"username" gorm:"uniqueIndex;not null"`
	Email        string            `json:"email" gorm:"uniqueIndex;not null"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	PasswordHash string            `json:"-" gorm:"not null"`
	Preferences  datatypes.JSONMap `json:"preferences" gorm:"type:jsonb"`
	IsActive     bool              `json:"isActive" gorm:"not null;default:true"`
	LastActiveAt time.Time         `json:"lastActiveAt"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// RefreshToken is one entry in a user's active refresh-token set. A refresh
// token with no row here is treated as revoked even if its signature is still
// valid and unexpired.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
