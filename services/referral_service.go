package services

import (
	"log"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/anjiri1684/fundipay/notifications"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AwardReferralCreditIfApplicable grants the referrer one commission-waiver
// credit the first time a referred worker completes a payment. The
// one-shot guard is a conditional update on the referred worker's row, so
// concurrent completions cannot award twice.
func AwardReferralCreditIfApplicable(workerID uuid.UUID) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var worker models.Worker
		if err := tx.First(&worker, "id = ?", workerID).Error; err != nil {
			return err
		}
		if worker.ReferredByCode == nil || *worker.ReferredByCode == "" {
			return nil
		}

		res := tx.Model(&models.Worker{}).
			Where("id = ? AND referral_rewarded = false", workerID).
			UpdateColumn("referral_rewarded", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var referrer models.Worker
		if err := tx.Where("referral_code = ?", *worker.ReferredByCode).First(&referrer).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				log.Printf("Referral code %s on worker %s no longer resolves, skipping award", *worker.ReferredByCode, workerID)
				return nil
			}
			return err
		}

		if err := tx.Model(&models.Worker{}).
			Where("id = ?", referrer.ID).
			UpdateColumn("referral_credits", gorm.Expr("referral_credits + 1")).Error; err != nil {
			return err
		}

		go notifications.SendSMS(referrer.Phone, "FundiPay: a fundi you referred just completed their first job. Your next payment is commission-free!")
		log.Printf("✅ Referral credit awarded to worker %s for referring %s", referrer.ID, workerID)
		return nil
	})

	if err != nil {
		log.Printf("🔥 Error processing referral credit for worker %s: %v", workerID, err)
	}
}
