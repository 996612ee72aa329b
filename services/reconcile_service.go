package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// How far back the metadata-scan fallback looks. Anything older is handled
// by the stale-PENDING sweep instead.
const callbackScanWindow = 24 * time.Hour

// Gateway correlation ids are long opaque tokens. Anything shorter is
// malformed and must never reach the metadata scan: a blank id would turn
// the LIKE pattern into '%%' and match every recent PENDING row.
const minCorrelationIDLen = 8

// ResolveCallback finds the transaction a gateway callback belongs to.
// The indexed correlation-id lookup is authoritative; the textual scan of
// recent PENDING metadata only exists for callbacks from older gateway
// integrations that buried the id inside the payload.
func ResolveCallback(correlationID string) (*models.Transaction, error) {
	if len(strings.TrimSpace(correlationID)) < minCorrelationIDLen {
		return nil, ErrTransactionNotFound
	}

	var txn models.Transaction
	err := database.DB.Where("checkout_request_id = ?", correlationID).First(&txn).Error
	if err == nil {
		return &txn, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = database.DB.
		Where("status = ? AND created_at > ? AND gateway_metadata LIKE ?",
			models.TxStatusPending, time.Now().Add(-callbackScanWindow), "%"+correlationID+"%").
		Order("created_at DESC").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	log.Printf("⚠️ Callback %s matched via metadata scan, not the indexed column", correlationID)
	return &txn, nil
}

// HandleGatewayCallback matches and applies one inbound callback. An
// unmatched callback is logged and swallowed: the gateway treats any
// non-2xx as "retry", so a harmless business miss must still ack.
func HandleGatewayCallback(correlationID string, success bool, rawPayload string) {
	txn, err := ResolveCallback(correlationID)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			log.Printf("⚠️ No transaction matches callback %s, acknowledging anyway", correlationID)
			return
		}
		log.Printf("🔥 Callback lookup for %s failed: %v", correlationID, err)
		return
	}

	if err := ApplyCallback(txn.ID, success, rawPayload); err != nil {
		log.Printf("🔥 Failed to apply callback %s to transaction %s: %v", correlationID, txn.ID, err)
	}
}

// ReconcileOffline matches a manually reported gateway code (USSD/paybill
// receipt) to a worker. There is no callback channel for these payments,
// so the transaction is created directly in COMPLETED state and the payout
// enqueued exactly as the callback path would.
func ReconcileOffline(workerID uuid.UUID, code string, amount float64, customerPhone string) (*models.Transaction, error) {
	var created *models.Transaction

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var worker models.Worker
		if err := tx.First(&worker, "id = ?", workerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkerNotFound
			}
			return err
		}

		var mapping models.OfflineMapping
		err := tx.Where("code = ?", code).First(&mapping).Error
		switch {
		case err == nil:
			if mapping.Reconciled {
				return ErrDuplicateCode
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			mapping = models.OfflineMapping{
				Code:          code,
				WorkerID:      workerID,
				Amount:        amount,
				CustomerPhone: customerPhone,
			}
			if err := tx.Create(&mapping).Error; err != nil {
				// A racing report of the same code hit the unique index.
				return ErrDuplicateCode
			}
		default:
			return err
		}

		payout, commission, usedCredit, err := CalculateCommission(tx, workerID, amount)
		if err != nil {
			return err
		}

		txn := models.Transaction{
			WorkerID:           workerID,
			CustomerPhone:      customerPhone,
			Amount:             amount,
			CheckoutRequestID:  &code,
			Status:             models.TxStatusCompleted,
			Source:             models.TxSourceOffline,
			Commission:         commission,
			WorkerPayout:       payout,
			UsedReferralCredit: usedCredit,
			PayoutStatus:       models.PayoutStatusPending,
			GatewayMetadata:    fmt.Sprintf("offline code %s reported manually", code),
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		res := tx.Model(&models.OfflineMapping{}).
			Where("id = ? AND reconciled = false", mapping.ID).
			Updates(map[string]interface{}{
				"reconciled":     true,
				"transaction_id": txn.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicateCode
		}

		created = &txn
		return nil
	})

	if err != nil {
		return nil, err
	}

	Queue.Enqueue(created.ID, created.WorkerID, created.WorkerPayout)
	go AwardReferralCreditIfApplicable(created.WorkerID)

	log.Printf("✅ Offline code %s reconciled into transaction %s", code, created.ID)
	return created, nil
}

type OfflineReport struct {
	WorkerID      uuid.UUID
	Code          string
	Amount        float64
	CustomerPhone string
}

type BatchItemResult struct {
	Code          string `json:"code"`
	Accepted      bool   `json:"accepted"`
	TransactionID string `json:"transaction_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type BatchSummary struct {
	Total    int               `json:"total"`
	Accepted int               `json:"accepted"`
	Rejected int               `json:"rejected"`
	Items    []BatchItemResult `json:"items"`
}

// ReconcileBatch processes reports sequentially with a small delay between
// items so a big backfill does not hammer the payout pipeline.
func ReconcileBatch(reports []OfflineReport) BatchSummary {
	summary := BatchSummary{Total: len(reports)}

	for i, report := range reports {
		if i > 0 {
			time.Sleep(settings.BatchItemDelay)
		}

		item := BatchItemResult{Code: report.Code}
		txn, err := ReconcileOffline(report.WorkerID, report.Code, report.Amount, report.CustomerPhone)
		if err != nil {
			item.Reason = ReasonFor(err)
			summary.Rejected++
		} else {
			item.Accepted = true
			item.TransactionID = txn.ID.String()
			summary.Accepted++
		}
		summary.Items = append(summary.Items, item)
	}

	return summary
}

// ReasonFor maps internal errors to the coarse reason strings the API
// exposes. Anything unexpected degrades to a generic reason.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateCode):
		return "duplicate"
	case errors.Is(err, ErrWorkerNotFound):
		return "worker_not_found"
	case errors.Is(err, ErrFlagged):
		return "flagged"
	case errors.Is(err, ErrGatewayUnavailable):
		return "gateway_unavailable"
	}
	return "internal_error"
}
