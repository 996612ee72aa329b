package models

import (
	"time"

	"github.com/google/uuid"
)

// FraudCheck is an immutable audit record. It is written for every inbound
// pay request, flagged or not, and never consulted again on the hot path.
type FraudCheck struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"worker_id"`
	CustomerPhone string    `gorm:"size:15;not null;index" json:"customer_phone"`
	Amount        float64   `gorm:"type:numeric(12,2);not null" json:"amount"`

	Score   float64 `gorm:"type:numeric(4,3);not null" json:"score"`
	Flagged bool    `gorm:"not null;default:false;index" json:"flagged"`
	Reasons string  `gorm:"type:text" json:"reasons"`

	CreatedAt time.Time `json:"created_at"`
}
