package domain

import (
	"time"

	"github.com/google/uuid"
)

// Character is one in-game character owned by a user. Entries reference it.
type Character struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (Character) TableName() string {
	return "characters"
}
