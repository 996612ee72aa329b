package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/anjiri1684/fundipay/payments"
	"github.com/anjiri1684/fundipay/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

type InitiatePaymentRequest struct {
	WorkerID      string  `json:"worker_id" validate:"required,uuid4"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	CustomerPhone string  `json:"customer_phone" validate:"required"`
}

// resolveIdempotency reserves the client key before anything with side
// effects runs. Returns (handled=true) when the handler already replied —
// either with the stored response or with an idempotency error.
func resolveIdempotency(c *fiber.Ctx) (key string, handled bool, err error) {
	key = c.Get("X-Idempotency-Key")
	if key == "" {
		return "", true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing X-Idempotency-Key header"})
	}

	found, rec, err := services.CheckOrReserve(key, services.HashRequest(c.Body()))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrKeyBodyMismatch):
			return "", true, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Idempotency key was already used with a different request body"})
		case errors.Is(err, services.ErrReservationInFlight):
			return "", true, c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Request with this key is still in flight, retry with the same key shortly"})
		case errors.Is(err, services.ErrReservationExpired):
			return "", true, c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Earlier request with this key never finished, retry with a fresh key"})
		}
		return "", true, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve idempotency key"})
	}

	if found {
		c.Set("Content-Type", "application/json")
		return "", true, c.Status(rec.ResponseCode).SendString(rec.ResponseBody)
	}

	return key, false, nil
}

// respondStored sends the response and stores it under the key so every
// retry with the same key gets the identical bytes back.
func respondStored(c *fiber.Ctx, key string, code int, payload fiber.Map) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to encode response"})
	}

	if err := services.Store(key, code, string(body)); err != nil {
		log.Printf("🔥 Failed to store idempotent response for key %s: %v", key, err)
	}

	c.Set("Content-Type", "application/json")
	return c.Status(code).Send(body)
}

func InitiatePayment(c *fiber.Ctx) error {
	var req InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	customerPhone, err := payments.SanitizeMpesaNumber(req.CustomerPhone)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	key, handled, err := resolveIdempotency(c)
	if handled {
		return err
	}

	workerID := uuid.MustParse(req.WorkerID)
	var worker models.Worker
	if err := database.DB.Where("id = ? AND is_active = true", workerID).First(&worker).Error; err != nil {
		return respondStored(c, key, fiber.StatusNotFound, fiber.Map{"rejected": true, "reason": "worker_not_found"})
	}

	// Fraud gate runs before any gateway call. The check row is persisted
	// for audit whether or not the request is blocked.
	fraud := services.CheckPayment(worker.ID, customerPhone, req.Amount)
	if fraud.Flagged {
		log.Printf("⚠️ Payment from %s to worker %s flagged (score %.2f)", customerPhone, worker.ID, fraud.Score)
		return respondStored(c, key, fiber.StatusForbidden, fiber.Map{"rejected": true, "reason": "flagged"})
	}

	reference := uuid.New().String()
	push, err := payments.Active.STKPush(customerPhone, req.Amount, reference)
	if err != nil {
		// No transaction exists for a failed push; the caller retries
		// with a fresh idempotency key.
		log.Printf("🔥 STK push for worker %s failed: %v", worker.ID, err)
		return respondStored(c, key, fiber.StatusBadGateway, fiber.Map{"rejected": true, "reason": "gateway_unavailable"})
	}

	txn, err := services.CreateTransaction(worker.ID, customerPhone, req.Amount, push, push.Raw)
	if err != nil {
		log.Printf("🔥 CRITICAL: push accepted but ledger write failed for checkout %s: %v", push.CheckoutRequestID, err)
		return respondStored(c, key, fiber.StatusInternalServerError, fiber.Map{"rejected": true, "reason": "internal_error"})
	}

	return respondStored(c, key, fiber.StatusCreated, fiber.Map{
		"accepted":         true,
		"transaction_id":   txn.ID.String(),
		"correlation_id":   push.CheckoutRequestID,
		"customer_message": push.CustomerMessage,
	})
}

type KcbWebhookPayload struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// HandlePaymentWebhook acknowledges 200 no matter what happens internally.
// The gateway retries on any non-2xx, and a business-level miss (unknown
// correlation id, duplicate callback) must not cause gateway-side retries.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	var payload KcbWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("⚠️ Unparseable gateway callback, acknowledging anyway: %v", err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Callback received"})
	}

	stk := payload.Body.StkCallback
	if stk.CheckoutRequestID == "" {
		// The endpoint is public; a stray or malformed POST must never
		// reach the transaction matcher.
		log.Printf("⚠️ Callback without a CheckoutRequestID ignored")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Callback received"})
	}

	log.Printf("Received webhook for CheckoutRequestID: %s, ResultCode: %d", stk.CheckoutRequestID, stk.ResultCode)

	services.HandleGatewayCallback(stk.CheckoutRequestID, stk.ResultCode == 0, string(c.Body()))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Callback received"})
}

func GetPaymentStatus(c *fiber.Ctx) error {
	correlationID := c.Query("correlation_id")
	if correlationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing correlation_id query parameter"})
	}

	var txn models.Transaction
	err := database.DB.Where("checkout_request_id = ?", correlationID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No payment found for this correlation id"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"status":        models.NormalizeStatus(txn.Status),
		"payout_status": txn.PayoutStatus,
	})
}
