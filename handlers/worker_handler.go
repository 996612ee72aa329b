package handlers

import (
	"errors"
	"log"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/anjiri1684/fundipay/payments"
	"github.com/anjiri1684/fundipay/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterWorkerRequest struct {
	FullName       string  `json:"full_name" validate:"required,min=3"`
	Phone          string  `json:"phone" validate:"required"`
	ReferredByCode *string `json:"referred_by_code,omitempty"`
}

func RegisterWorker(c *fiber.Ctx) error {
	var req RegisterWorkerRequest
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

	var newWorker models.Worker
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if req.ReferredByCode != nil && *req.ReferredByCode != "" {
			var referrer models.Worker
			if err := tx.Where("referral_code = ?", *req.ReferredByCode).First(&referrer).Error; err != nil {
				log.Printf("Invalid referral code used at signup: %s", *req.ReferredByCode)
				req.ReferredByCode = nil
			}
		}

		uniqueCode, err := utils.GenerateUniqueReferralCode(tx)
		if err != nil {
			return errors.New("failed to generate unique referral code")
		}

		newWorker = models.Worker{
			FullName:       req.FullName,
			Phone:          phone,
			ReferralCode:   &uniqueCode,
			ReferredByCode: req.ReferredByCode,
		}
		if err := tx.Create(&newWorker).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.New("phone already registered")
			}
			return err
		}
		return nil
	})

	if err != nil {
		if err.Error() == "phone already registered" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Phone already registered"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register worker"})
	}

	return c.Status(fiber.StatusCreated).JSON(newWorker)
}

func GetWorker(c *fiber.Ctx) error {
	workerID := c.Params("id")
	if _, err := uuid.Parse(workerID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID format"})
	}

	var worker models.Worker
	if err := database.DB.Where("id = ?", workerID).First(&worker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(worker)
}
