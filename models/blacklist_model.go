package models

import (
	"time"

	"github.com/google/uuid"
)

type BlacklistEntry struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Phone  string    `gorm:"size:15;not null;unique" json:"phone"`
	Reason string    `gorm:"type:text" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}
