package services

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"gorm.io/gorm/clause"
)

// How long a reservation with no stored response is still considered owned
// by a live request. Past this, the original caller is assumed dead and the
// client is told to retry with a fresh key.
const reservationGrace = 30 * time.Second

// HashRequest fingerprints a request body so a reused key with a different
// body can be rejected instead of silently replayed.
func HashRequest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// CheckOrReserve resolves an idempotency key before any side-effecting
// gateway call. Returns (true, record) when a finished response exists, or
// (false, nil) when the key is now reserved for this caller. Two racing
// requests on the same key are resolved by the unique index: exactly one
// insert wins.
func CheckOrReserve(key, requestHash string) (bool, *models.IdempotencyRecord, error) {
	rec := models.IdempotencyRecord{Key: key, RequestHash: requestHash}

	res := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&rec)
	if res.Error != nil {
		return false, nil, res.Error
	}
	if res.RowsAffected == 1 {
		return false, nil, nil
	}

	var existing models.IdempotencyRecord
	if err := database.DB.Where("key = ?", key).First(&existing).Error; err != nil {
		return false, nil, err
	}

	if existing.RequestHash != requestHash {
		return false, nil, ErrKeyBodyMismatch
	}

	if existing.ResponseCode == 0 {
		// Within the grace window the owning request is still running and
		// will store a response; the client retries the SAME key to pick
		// it up. Only past the window is the owner presumed dead and a
		// fresh key required.
		if time.Since(existing.CreatedAt) > reservationGrace {
			log.Printf("⚠️ Idempotency key %s reserved %s ago with no response; owner presumed dead", key, time.Since(existing.CreatedAt).Round(time.Second))
			return false, nil, ErrReservationExpired
		}
		return false, nil, ErrReservationInFlight
	}

	return true, &existing, nil
}

// Store completes a reservation with the response that every later request
// carrying the same key will receive verbatim.
func Store(key string, responseCode int, responseBody string) error {
	return database.DB.Model(&models.IdempotencyRecord{}).
		Where("key = ?", key).
		Updates(map[string]interface{}{
			"response_code": responseCode,
			"response_body": responseBody,
		}).Error
}

// PurgeOlderThan removes expired records; called from the cleanup cron.
func PurgeOlderThan(age time.Duration) (int64, error) {
	res := database.DB.Where("created_at < ?", time.Now().Add(-age)).
		Delete(&models.IdempotencyRecord{})
	return res.RowsAffected, res.Error
}
