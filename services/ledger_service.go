package services

import (
	"fmt"
	"log"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/anjiri1684/fundipay/notifications"
	"github.com/anjiri1684/fundipay/payments"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateTransaction writes the PENDING ledger entry once the gateway has
// accepted a push request. The CheckoutRequestID is stored as an indexed
// column at creation time; callback matching never depends on the metadata
// blob alone.
func CreateTransaction(workerID uuid.UUID, customerPhone string, amount float64, push *payments.PushResult, rawMetadata string) (*models.Transaction, error) {
	txn := models.Transaction{
		WorkerID:          workerID,
		CustomerPhone:     customerPhone,
		Amount:            amount,
		CheckoutRequestID: &push.CheckoutRequestID,
		MerchantRequestID: &push.MerchantRequestID,
		Status:            models.TxStatusPending,
		Source:            models.TxSourceSTK,
		PayoutStatus:      models.PayoutStatusNone,
		GatewayMetadata:   rawMetadata,
	}

	if err := database.DB.Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ApplyCallback drives the PENDING -> {COMPLETED, FAILED} transition for a
// matched transaction. Gateway callbacks are routinely duplicated, so an
// already-terminal transaction is a strict no-op. Commission and payout
// fields are written in the same DB transaction as the terminal state, and
// the payout job hand-off happens only after that commits.
func ApplyCallback(transactionID uuid.UUID, success bool, metadata string) error {
	var enqueue *models.Transaction

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&txn, "id = ?", transactionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTransactionNotFound
			}
			return err
		}

		if models.IsTerminal(txn.Status) {
			log.Printf("Duplicate callback for transaction %s ignored (status=%s)", txn.ID, txn.Status)
			return nil
		}

		if metadata != "" {
			txn.GatewayMetadata = appendMetadata(txn.GatewayMetadata, metadata)
		}

		if !success {
			txn.Status = models.TxStatusFailed
			return tx.Save(&txn).Error
		}

		payout, commission, usedCredit, err := CalculateCommission(tx, txn.WorkerID, txn.Amount)
		if err != nil {
			return err
		}

		txn.Status = models.TxStatusCompleted
		txn.Commission = commission
		txn.WorkerPayout = payout
		txn.UsedReferralCredit = usedCredit
		txn.PayoutStatus = models.PayoutStatusPending
		if err := tx.Save(&txn).Error; err != nil {
			return err
		}

		enqueue = &txn
		return nil
	})

	if err != nil {
		return err
	}

	if enqueue != nil {
		Queue.Enqueue(enqueue.ID, enqueue.WorkerID, enqueue.WorkerPayout)
		go AwardReferralCreditIfApplicable(enqueue.WorkerID)
	}

	return nil
}

// MarkPayoutOutcome records the worker-leg result. A transaction stays
// COMPLETED on the customer leg even when its payout permanently fails;
// the two facts are tracked separately.
func MarkPayoutOutcome(transactionID uuid.UUID, ok bool) error {
	var txn models.Transaction
	if err := database.DB.First(&txn, "id = ?", transactionID).Error; err != nil {
		return err
	}

	newStatus := models.PayoutStatusFailed
	if ok {
		newStatus = models.PayoutStatusSuccess
	}

	res := database.DB.Model(&models.Transaction{}).
		Where("id = ? AND payout_status = ?", transactionID, models.PayoutStatusPending).
		UpdateColumn("payout_status", newStatus)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("Payout outcome for transaction %s already recorded, skipping", transactionID)
		return nil
	}

	if !ok {
		log.Printf("🔥 OPERATOR ALERT: payout for transaction %s permanently failed after retries", transactionID)
		return nil
	}

	// Cumulative totals are incremented at the storage layer; multiple
	// instances may process payouts concurrently.
	if err := database.DB.Model(&models.Worker{}).
		Where("id = ?", txn.WorkerID).
		Updates(map[string]interface{}{
			"total_earned":   gorm.Expr("total_earned + ?", txn.Amount),
			"total_paid_out": gorm.Expr("total_paid_out + ?", txn.WorkerPayout),
			"completed_jobs": gorm.Expr("completed_jobs + 1"),
		}).Error; err != nil {
		return err
	}

	var worker models.Worker
	if err := database.DB.First(&worker, "id = ?", txn.WorkerID).Error; err == nil {
		go notifications.SendSMS(worker.Phone, fmt.Sprintf("FundiPay: you have been paid KES %.2f for job %s.", txn.WorkerPayout, txn.ID))
	}

	return nil
}

func appendMetadata(existing, incoming string) string {
	if existing == "" {
		return incoming
	}
	return existing + "\n" + incoming
}
