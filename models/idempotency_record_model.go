package models

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord stores the response produced the first time a client
// key was seen. A row with ResponseCode == 0 is a reservation whose owner
// has not finished yet (or died mid-flight).
type IdempotencyRecord struct {
	ID  uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Key string    `gorm:"size:255;not null;unique" json:"key"`

	RequestHash  string `gorm:"size:64;not null" json:"request_hash"`
	ResponseCode int    `gorm:"not null;default:0" json:"response_code"`
	ResponseBody string `gorm:"type:text" json:"response_body"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
