// Package provider holds the provider-facing controllers: signup,
// verification and the six-step onboarding flow.
package provider

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/otp"
	"github.com/meetvachhani/salon-marketplace/utils"
)

type verifyProviderOTPRequest struct {
	PhoneCode   string `json:"phone_code" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	OTP         string `json:"otp" validate:"required,len=4"`
}

// VerifyRegistrationOTP completes provider signup. Providers verify by phone
// number rather than user id.
func VerifyRegistrationOTP(c *fiber.Ctx) error {
	input := new(verifyProviderOTPRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	account, fail := providerByPhone(c, input.PhoneCode, input.PhoneNumber)
	if account == nil {
		return fail
	}

	result, err := otp.Default.VerifyForEntity(models.OtpEntityProvider, account.ID, input.OTP, models.PurposeRegistration)
	if err != nil {
		log.Printf("Error verifying provider OTP for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to verify OTP")
	}
	if !result.Success {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, result.Message)
	}

	if err := account.MarkVerified(db.DB); err != nil {
		log.Printf("Error marking provider %d verified: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to update account")
	}

	token, err := utils.Issuer.Generate(account.ID, string(models.UserTypeProvider), nil)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to generate token")
	}

	account.Password = ""
	return utils.Success(c, fiber.StatusOK, "Account verified", fiber.Map{
		"token":     token,
		"user_type": account.UserType,
		"user":      account,
	})
}

type resendProviderOTPRequest struct {
	PhoneCode   string `json:"phone_code" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// ResendRegistrationOTP reissues the registration code for an unverified provider.
func ResendRegistrationOTP(c *fiber.Ctx) error {
	input := new(resendProviderOTPRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	account, fail := providerByPhone(c, input.PhoneCode, input.PhoneNumber)
	if account == nil {
		return fail
	}
	if account.IsVerified {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeConflict, "Account is already verified")
	}

	allowed, wait, _ := otp.Default.ThrottleResend(c.Context(), account.PhoneNumber, models.PurposeRegistration)
	if !allowed {
		return utils.Fail(c, fiber.StatusTooManyRequests, utils.ErrCodeRateLimited,
			"Please wait "+strconv.Itoa(wait)+" seconds before requesting another code")
	}

	record, err := otp.Default.CreateForEntity(models.OtpEntityProvider, account.ID, account.PhoneNumber, models.PurposeRegistration)
	if err != nil {
		log.Printf("Error recreating provider OTP for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to create OTP")
	}
	utils.DispatchOTP(account.Email, account.PhoneNumber, record.OtpCode, string(models.PurposeRegistration))

	return utils.Success(c, fiber.StatusOK, "A new code has been sent", fiber.Map{
		"user_id": account.ID,
	})
}

func providerByPhone(c *fiber.Ctx, phoneCode, phoneNumber string) (*models.User, error) {
	var account models.User
	if db.DB.Where("phone_code = ? AND phone_number = ? AND user_type = ?",
		phoneCode, phoneNumber, models.UserTypeProvider).
		First(&account).RowsAffected == 0 {
		return nil, utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Account not found")
	}
	return &account, nil
}
