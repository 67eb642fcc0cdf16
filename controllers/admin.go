package controllers

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/utils"
)

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLogin authenticates an admin by email.
func AdminLogin(c *fiber.Ctx) error {
	input := new(adminLoginRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var admin models.Admin
	if db.DB.Where("email = ?", input.Email).First(&admin).RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusUnauthorized, utils.ErrCodeForbidden, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(input.Password)); err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, utils.ErrCodeForbidden, "Invalid credentials")
	}

	token, err := utils.Issuer.Generate(admin.ID, "admin", nil)
	if err != nil {
		log.Printf("Error issuing admin token for %d: %v", admin.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to generate token")
	}

	admin.Password = ""
	return utils.Success(c, fiber.StatusOK, "Login successful", fiber.Map{
		"token": token,
		"admin": admin,
	})
}

// ListPendingProviders pages through providers who finished onboarding but
// still await approval.
func ListPendingProviders(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var providers []models.ServiceProvider
	query := db.DB.Preload("User").
		Where("step_completed >= ? AND is_approved = ?", models.StepServices, false)

	if err := query.Limit(limit).Offset(offset).Find(&providers).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to fetch providers")
	}

	var count int64
	db.DB.Model(&models.ServiceProvider{}).
		Where("step_completed >= ? AND is_approved = ?", models.StepServices, false).
		Count(&count)

	return utils.Success(c, fiber.StatusOK, "Pending providers", fiber.Map{
		"providers": providers,
		"total":     count,
		"page":      page,
		"limit":     limit,
		"pages":     (int(count) + limit - 1) / limit,
	})
}

type providerActionRequest struct {
	ProviderID uint   `json:"provider_id" validate:"required"`
	Approve    *bool  `json:"approve" validate:"required"`
	Reason     string `json:"reason"`
}

// ProviderAction approves or rejects a completed provider profile. Approval
// is the second gate on top of the six onboarding steps.
func ProviderAction(c *fiber.Ctx) error {
	input := new(providerActionRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var p models.ServiceProvider
	if err := db.DB.First(&p, input.ProviderID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Provider not found")
	}

	updates := map[string]interface{}{
		"is_approved":      *input.Approve,
		"rejection_reason": "",
	}
	if !*input.Approve {
		updates["rejection_reason"] = input.Reason
	}
	if err := db.DB.Model(&p).Updates(updates).Error; err != nil {
		log.Printf("Error updating approval for provider %d: %v", p.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to update provider")
	}

	message := "Provider approved"
	if !*input.Approve {
		message = "Provider rejected"
	}
	return utils.Success(c, fiber.StatusOK, message, fiber.Map{
		"provider": p,
	})
}
