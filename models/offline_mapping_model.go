package models

import (
	"time"

	"github.com/google/uuid"
)

// OfflineMapping ties a manually reported gateway code (USSD/paybill
// receipt) to a worker. Reconciled flips to true exactly once, when the
// code is matched into a completed transaction.
type OfflineMapping struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Code          string     `gorm:"size:50;not null;unique" json:"code"`
	WorkerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"worker_id"`
	Amount        float64    `gorm:"type:numeric(12,2);not null" json:"amount"`
	CustomerPhone string     `gorm:"size:15;not null" json:"customer_phone"`
	Reconciled    bool       `gorm:"not null;default:false" json:"reconciled"`
	TransactionID *uuid.UUID `gorm:"type:uuid" json:"transaction_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
