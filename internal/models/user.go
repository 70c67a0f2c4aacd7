// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxUsernameLength bounds User.Username.
const MaxUsernameLength = 50

// User is an author of posts. Users are created by seeding and never mutated.
type User struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:100" json:"name"`
	Username  string    `gorm:"size:50;not null;index" json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Posts     []Post    `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate assigns an id when the caller did not supply one.
func (u *User) BeforeCreate(_ *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}
