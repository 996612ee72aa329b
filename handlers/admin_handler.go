package handlers

import (
	"errors"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/anjiri1684/fundipay/payments"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BlacklistRequest struct {
	Phone  string `json:"phone" validate:"required"`
	Reason string `json:"reason" validate:"required,min=5"`
}

func AddBlacklistEntry(c *fiber.Ctx) error {
	var req BlacklistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	phone, err := payments.SanitizeMpesaNumber(req.Phone)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entry := models.BlacklistEntry{Phone: phone, Reason: req.Reason}
	if err := database.DB.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Phone already blacklisted"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to blacklist phone"})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func RemoveBlacklistEntry(c *fiber.Ctx) error {
	phone, err := payments.SanitizeMpesaNumber(c.Params("phone"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res := database.DB.Where("phone = ?", phone).Delete(&models.BlacklistEntry{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove blacklist entry"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Phone not blacklisted"})
	}

	return c.JSON(fiber.Map{"message": "Blacklist entry removed"})
}

func ListFraudChecks(c *fiber.Ctx) error {
	query := database.DB.Order("created_at DESC").Limit(100)
	if c.Query("flagged") == "true" {
		query = query.Where("flagged = true")
	}

	var checks []models.FraudCheck
	if err := query.Find(&checks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(checks)
}

// ListFailedPayouts surfaces transactions whose worker-leg payout
// permanently failed and needs operator intervention.
func ListFailedPayouts(c *fiber.Ctx) error {
	var txns []models.Transaction
	err := database.DB.
		Where("status = ? AND payout_status = ?", models.TxStatusCompleted, models.PayoutStatusFailed).
		Order("updated_at DESC").
		Find(&txns).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(txns)
}
