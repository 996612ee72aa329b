package handlers

import (
	"github.com/anjiri1684/fundipay/payments"
	"github.com/anjiri1684/fundipay/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OfflineReportRequest struct {
	WorkerID      string  `json:"worker_id" validate:"required,uuid4"`
	Code          string  `json:"code" validate:"required,min=6,max=50"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	CustomerPhone string  `json:"customer_phone" validate:"required"`
}

func ReconcileOfflinePayment(c *fiber.Ctx) error {
	var req OfflineReportRequest
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

	txn, err := services.ReconcileOffline(uuid.MustParse(req.WorkerID), req.Code, req.Amount, customerPhone)
	if err != nil {
		reason := services.ReasonFor(err)
		code := fiber.StatusConflict
		if reason == "worker_not_found" {
			code = fiber.StatusNotFound
		} else if reason == "internal_error" {
			code = fiber.StatusInternalServerError
		}
		return respondStored(c, key, code, fiber.Map{"rejected": true, "reason": reason})
	}

	return respondStored(c, key, fiber.StatusCreated, fiber.Map{
		"accepted":       true,
		"transaction_id": txn.ID.String(),
	})
}

type BatchReconcileRequest struct {
	Reports []OfflineReportRequest `json:"reports" validate:"required,min=1,max=100,dive"`
}

// ReconcileOfflineBatch is the operator-facing backfill endpoint. Items
// are processed sequentially; per-item failures are reported, not fatal.
func ReconcileOfflineBatch(c *fiber.Ctx) error {
	var req BatchReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	reports := make([]services.OfflineReport, 0, len(req.Reports))
	for _, r := range req.Reports {
		phone, err := payments.SanitizeMpesaNumber(r.CustomerPhone)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer phone for code " + r.Code})
		}
		reports = append(reports, services.OfflineReport{
			WorkerID:      uuid.MustParse(r.WorkerID),
			Code:          r.Code,
			Amount:        r.Amount,
			CustomerPhone: phone,
		})
	}

	summary := services.ReconcileBatch(reports)
	return c.JSON(summary)
}
