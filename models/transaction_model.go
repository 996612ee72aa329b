package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction statuses. Normalize at the storage boundary so the rest of
// the code only ever sees these exact values.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// Payout-leg statuses. Tracked separately from the customer-leg status:
// a transaction can be completed on the customer side while its payout
// is still pending or has permanently failed.
const (
	PayoutStatusNone    = "none"
	PayoutStatusPending = "pending"
	PayoutStatusSuccess = "success"
	PayoutStatusFailed  = "failed"
)

const (
	TxSourceSTK     = "stk"
	TxSourceOffline = "offline"
)

type Transaction struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"worker_id"`
	CustomerPhone string    `gorm:"size:15;not null;index" json:"customer_phone"`
	Amount        float64   `gorm:"type:numeric(12,2);not null" json:"amount"`

	CheckoutRequestID *string `gorm:"size:255;unique" json:"checkout_request_id"`
	MerchantRequestID *string `gorm:"size:255" json:"merchant_request_id"`

	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Source string `gorm:"size:20;not null;default:'stk'" json:"source"`

	Commission         float64 `gorm:"type:numeric(12,2);not null;default:0.00" json:"commission"`
	WorkerPayout       float64 `gorm:"type:numeric(12,2);not null;default:0.00" json:"worker_payout"`
	UsedReferralCredit bool    `gorm:"not null;default:false" json:"used_referral_credit"`

	PayoutStatus string `gorm:"size:20;not null;default:'none'" json:"payout_status"`

	// Raw gateway payloads, append-only. Kept opaque; the reconciler only
	// ever scans it as text when the correlation id lookup misses.
	GatewayMetadata string `gorm:"type:text" json:"-"`

	Worker Worker `gorm:"foreignkey:WorkerID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeStatus maps the mixed-case status strings that older gateway
// integrations used onto the closed set above.
func NormalizeStatus(s string) string {
	switch s {
	case "PENDING", "Pending", TxStatusPending:
		return TxStatusPending
	case "COMPLETED", "Completed", "succeeded", "SUCCESS", TxStatusCompleted:
		return TxStatusCompleted
	case "FAILED", "Failed", TxStatusFailed:
		return TxStatusFailed
	}
	return s
}

// IsTerminal reports whether a transaction status can no longer change.
func IsTerminal(status string) bool {
	return status == TxStatusCompleted || status == TxStatusFailed
}
