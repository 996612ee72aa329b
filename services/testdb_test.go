package services

import (
	"testing"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB points the package's global DB at a fresh in-memory database
// opened with the same configuration production uses, so error translation
// and transaction behavior match the real thing.
func newTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each pooled :memory: connection is a different empty database; pin
	// the pool to one connection so every query sees the same data.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Worker{},
		&models.Transaction{},
		&models.PayoutAttempt{},
		&models.FraudCheck{},
		&models.IdempotencyRecord{},
		&models.OfflineMapping{},
		&models.BlacklistEntry{},
	))

	database.DB = db
	settings = testSettings()
}

func seedWorker(t *testing.T, phone string) models.Worker {
	t.Helper()
	worker := models.Worker{FullName: "Test Fundi", Phone: phone, IsActive: true}
	require.NoError(t, database.DB.Create(&worker).Error)
	return worker
}
