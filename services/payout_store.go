package services

import (
	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/google/uuid"
)

// dbPayoutStore is the GORM-backed PayoutStore used in production.
type dbPayoutStore struct{}

func (dbPayoutStore) WorkerPhone(workerID uuid.UUID) (string, error) {
	var worker models.Worker
	if err := database.DB.First(&worker, "id = ?", workerID).Error; err != nil {
		return "", err
	}
	return worker.Phone, nil
}

func (dbPayoutStore) RecordAttempt(job PayoutJob, attemptNumber int) (uuid.UUID, error) {
	attempt := models.PayoutAttempt{
		TransactionID: job.TransactionID,
		WorkerID:      job.WorkerID,
		Amount:        job.Amount,
		AttemptNumber: attemptNumber,
		Status:        models.PayoutStatusPending,
	}
	if err := database.DB.Create(&attempt).Error; err != nil {
		return uuid.Nil, err
	}
	return attempt.ID, nil
}

func (dbPayoutStore) MarkAttemptSuccess(attemptID uuid.UUID, disbursementID string) error {
	return database.DB.Model(&models.PayoutAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"status":          models.PayoutStatusSuccess,
			"disbursement_id": disbursementID,
		}).Error
}

func (dbPayoutStore) MarkAttemptFailed(attemptID uuid.UUID, reason string) error {
	return database.DB.Model(&models.PayoutAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"status":         models.PayoutStatusFailed,
			"failure_reason": reason,
		}).Error
}

func (dbPayoutStore) MarkPayoutOutcome(transactionID uuid.UUID, ok bool) error {
	return MarkPayoutOutcome(transactionID, ok)
}
