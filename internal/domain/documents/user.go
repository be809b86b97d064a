package documents

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the directory entry consulted for signatures, names and roles.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FirstName      string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName       string    `gorm:"not null;column:last_name" json:"last_name"`
	Position       string    `gorm:"column:position" json:"position"`
	Role           UserRole  `gorm:"not null;default:USER;column:role" json:"role"`
	SavedSignature *string   `gorm:"type:text;column:saved_signature" json:"-"`

	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
