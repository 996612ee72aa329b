package jobs

import (
	"log"
	"time"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/anjiri1684/fundipay/services"
)

// STK transactions that stay PENDING past this window will never get a
// callback; failing them keeps the reconciler's scan window small.
const stalePendingAge = 24 * time.Hour

func ExpireStalePending() {
	log.Println("Running job: ExpireStalePending...")

	res := database.DB.Model(&models.Transaction{}).
		Where("status = ? AND source = ? AND created_at < ?",
			models.TxStatusPending, models.TxSourceSTK, time.Now().Add(-stalePendingAge)).
		Update("status", models.TxStatusFailed)

	if res.Error != nil {
		log.Printf("🔥 Error expiring stale pending transactions: %v", res.Error)
		return
	}

	if res.RowsAffected > 0 {
		log.Printf("⚠️ Expired %d stale pending transactions", res.RowsAffected)
	}
}

func PurgeIdempotencyRecords() {
	log.Println("Running job: PurgeIdempotencyRecords...")

	purged, err := services.PurgeOlderThan(24 * time.Hour)
	if err != nil {
		log.Printf("🔥 Error purging idempotency records: %v", err)
		return
	}

	if purged > 0 {
		log.Printf("Purged %d expired idempotency records", purged)
	}
}
