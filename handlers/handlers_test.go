package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Worker{},
		&models.Transaction{},
		&models.IdempotencyRecord{},
		&models.FraudCheck{},
		&models.BlacklistEntry{},
	))

	database.DB = db
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestWebhookWithoutCorrelationIDIsIgnored(t *testing.T) {
	setupTestDB(t)
	app := fiber.New()
	app.Post("/api/v1/payments/webhook", HandlePaymentWebhook)

	worker := models.Worker{FullName: "Test Fundi", Phone: "254700000100", IsActive: true}
	require.NoError(t, database.DB.Create(&worker).Error)

	checkout := "ws_CO_2609_100"
	txn := models.Transaction{
		WorkerID:          worker.ID,
		CustomerPhone:     "254711000100",
		Amount:            300,
		CheckoutRequestID: &checkout,
		Status:            models.TxStatusPending,
		Source:            models.TxSourceSTK,
		PayoutStatus:      models.PayoutStatusNone,
	}
	require.NoError(t, database.DB.Create(&txn).Error)

	// A stray POST to the public endpoint parses to an empty correlation
	// id and a zero ResultCode. It must be acknowledged without touching
	// any pending transaction.
	resp, err := app.Test(jsonRequest("POST", "/api/v1/payments/webhook", `{}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.Transaction
	require.NoError(t, database.DB.First(&got, "id = ?", txn.ID).Error)
	assert.Equal(t, models.TxStatusPending, got.Status)
	assert.Equal(t, models.PayoutStatusNone, got.PayoutStatus)
}

func TestRegisterWorkerDuplicatePhone(t *testing.T) {
	setupTestDB(t)
	app := fiber.New()
	app.Post("/api/v1/workers", RegisterWorker)

	body := `{"full_name":"Juma Otieno","phone":"0712345678"}`

	resp, err := app.Test(jsonRequest("POST", "/api/v1/workers", body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/api/v1/workers", body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
