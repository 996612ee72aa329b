package models

import (
	"time"

	"github.com/google/uuid"
)

// PayoutAttempt is the audit row for one disbursement try. The in-memory
// payout queue owns job lifecycle; these rows are what operators see.
type PayoutAttempt struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`
	WorkerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"worker_id"`
	Amount        float64   `gorm:"type:numeric(12,2);not null" json:"amount"`

	AttemptNumber  int     `gorm:"not null" json:"attempt_number"`
	Status         string  `gorm:"size:20;not null;default:'pending'" json:"status"`
	DisbursementID *string `gorm:"size:255" json:"disbursement_id"`
	FailureReason  *string `gorm:"type:text" json:"failure_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
