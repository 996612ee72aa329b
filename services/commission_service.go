package services

import (
	"github.com/anjiri1684/fundipay/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// splitAmount computes the commission split at the configured rate.
// Decimal arithmetic avoids the float drift that plagued the old
// percentage math.
func splitAmount(amount, rate float64) (payout, commission float64) {
	amt := decimal.NewFromFloat(amount)
	comm := amt.Mul(decimal.NewFromFloat(rate)).Round(2)
	pay := amt.Sub(comm)

	commission, _ = comm.Float64()
	payout, _ = pay.Float64()
	return payout, commission
}

// CalculateCommission decides the platform/worker split for one payment.
// A worker holding at least one referral credit gets a one-time full
// pass-through; the credit decrement is a conditional update at the
// storage layer so two concurrent payments can never spend the same
// credit twice. Must run inside the caller's DB transaction so the
// decrement commits or rolls back with the terminal state transition.
func CalculateCommission(tx *gorm.DB, workerID uuid.UUID, amount float64) (payout, commission float64, usedCredit bool, err error) {
	res := tx.Model(&models.Worker{}).
		Where("id = ? AND referral_credits > 0", workerID).
		UpdateColumn("referral_credits", gorm.Expr("referral_credits - 1"))
	if res.Error != nil {
		return 0, 0, false, res.Error
	}

	if res.RowsAffected == 1 {
		return amount, 0, true, nil
	}

	payout, commission = splitAmount(amount, settings.CommissionRate)
	return payout, commission, false, nil
}
