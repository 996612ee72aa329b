package models

import (
	"time"

	"github.com/google/uuid"
)

type Worker struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FullName       string    `gorm:"size:255;not null" json:"full_name"`
	Phone          string    `gorm:"size:15;not null;unique" json:"phone"`
	ReferralCode   *string   `gorm:"size:10;unique" json:"referral_code"`
	ReferredByCode *string   `gorm:"size:10" json:"referred_by_code"`

	// ReferralRewarded flips once, when this worker's first payment
	// completes and the referrer earns their credit.
	ReferralRewarded bool `gorm:"not null;default:false" json:"-"`

	ReferralCredits int     `gorm:"not null;default:0" json:"referral_credits"`
	TotalEarned     float64 `gorm:"type:numeric(12,2);not null;default:0.00" json:"total_earned"`
	TotalPaidOut    float64 `gorm:"type:numeric(12,2);not null;default:0.00" json:"total_paid_out"`
	CompletedJobs   int     `gorm:"not null;default:0" json:"completed_jobs"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
