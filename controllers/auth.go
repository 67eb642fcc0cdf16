package controllers

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/otp"
	"github.com/meetvachhani/salon-marketplace/utils"
)

type loginRequest struct {
	PhoneCode   string `json:"phone_code" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// Login authenticates both customers and providers by phone. The response
// never reveals whether the phone or the password was wrong.
func Login(c *fiber.Ctx) error {
	input := new(loginRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var account models.User
	if db.DB.Where("phone_code = ? AND phone_number = ?", input.PhoneCode, input.PhoneNumber).
		First(&account).RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusUnauthorized, utils.ErrCodeForbidden, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(input.Password)); err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, utils.ErrCodeForbidden, "Invalid credentials")
	}

	if !account.IsVerified {
		return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Account is not verified")
	}
	if account.Status != models.StatusActive {
		return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Account is not active")
	}

	token, err := utils.Issuer.Generate(account.ID, string(account.UserType), nil)
	if err != nil {
		log.Printf("Error issuing token for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to generate token")
	}

	account.Password = ""
	data := fiber.Map{
		"token":     token,
		"user_type": account.UserType,
		"user":      account,
	}

	// A provider gets a token even before admin approval so the client can
	// finish onboarding and poll approval state.
	if account.UserType == models.UserTypeProvider {
		var provider models.ServiceProvider
		if db.DB.Where("user_id = ?", account.ID).First(&provider).RowsAffected > 0 {
			data["provider"] = provider
			data["step_completed"] = provider.StepCompleted
			if provider.OnboardingComplete() && !provider.IsApproved {
				data["approval_required"] = true
			}
		} else {
			data["step_completed"] = models.StepNone
		}
	}

	return utils.Success(c, fiber.StatusOK, "Login successful", data)
}

// Logout revokes the presented token by deleting its ledger row.
func Logout(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "No authentication token")
	}
	if err := utils.Issuer.Revoke(token.Raw); err != nil {
		log.Printf("Error revoking token: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to log out")
	}
	return utils.Success(c, fiber.StatusOK, "Successfully logged out", nil)
}

type forgotPasswordRequest struct {
	PhoneCode   string `json:"phone_code" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// ForgotPassword starts the reset flow by issuing a password_reset OTP.
func ForgotPassword(c *fiber.Ctx) error {
	input := new(forgotPasswordRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var account models.User
	if db.DB.Where("phone_code = ? AND phone_number = ?", input.PhoneCode, input.PhoneNumber).
		First(&account).RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Account not found")
	}

	allowed, wait, _ := otp.Default.ThrottleResend(c.Context(), account.PhoneNumber, models.PurposePasswordReset)
	if !allowed {
		return utils.Fail(c, fiber.StatusTooManyRequests, utils.ErrCodeRateLimited,
			"Please wait "+strconv.Itoa(wait)+" seconds before requesting another code")
	}

	record, err := otp.Default.CreateForEntity(otpEntityFor(&account), account.ID, account.PhoneNumber, models.PurposePasswordReset)
	if err != nil {
		log.Printf("Error creating password reset OTP for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to create OTP")
	}
	utils.DispatchOTP(account.Email, account.PhoneNumber, record.OtpCode, string(models.PurposePasswordReset))

	return utils.Success(c, fiber.StatusOK, "Password reset code sent", fiber.Map{
		"user_id": account.ID,
	})
}

type verifyForgotPasswordRequest struct {
	PhoneCode   string `json:"phone_code" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	OTP         string `json:"otp" validate:"required,len=4"`
}

// VerifyForgotPasswordOTP checks the reset code and hands back a short-lived
// reset token that ResetPassword consumes.
func VerifyForgotPasswordOTP(c *fiber.Ctx) error {
	input := new(verifyForgotPasswordRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var account models.User
	if db.DB.Where("phone_code = ? AND phone_number = ?", input.PhoneCode, input.PhoneNumber).
		First(&account).RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Account not found")
	}

	result, err := otp.Default.VerifyForEntity(otpEntityFor(&account), account.ID, input.OTP, models.PurposePasswordReset)
	if err != nil {
		log.Printf("Error verifying password reset OTP for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to verify OTP")
	}
	if !result.Success {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, result.Message)
	}

	resetToken, err := utils.Issuer.Generate(account.ID, "password_reset", nil)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to generate reset token")
	}

	return utils.Success(c, fiber.StatusOK, "OTP verified", fiber.Map{
		"reset_token": resetToken,
	})
}

type resetPasswordRequest struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword sets a new password and revokes every live session.
func ResetPassword(c *fiber.Ctx) error {
	input := new(resetPasswordRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	claims, err := utils.Issuer.Verify(input.ResetToken)
	if err != nil {
		return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Invalid or expired reset token")
	}
	if userType, _ := claims["user_type"].(string); userType != "password_reset" {
		return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Invalid reset token")
	}

	idVal, ok := claims["id"].(float64)
	if !ok {
		return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Invalid reset token")
	}
	userID := uint(idVal)

	var account models.User
	if err := db.DB.First(&account, userID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Account not found")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to hash password")
	}

	if err := db.DB.Model(&account).Update("password", string(hashed)).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to update password")
	}

	// The reset token and every other session die with the old password.
	utils.Issuer.Revoke(input.ResetToken)
	utils.Issuer.RevokeAll(account.ID, string(account.UserType))
	utils.Issuer.RevokeAll(account.ID, "password_reset")

	return utils.Success(c, fiber.StatusOK, "Password reset successfully", nil)
}

func otpEntityFor(account *models.User) models.OtpEntityType {
	if account.UserType == models.UserTypeProvider {
		return models.OtpEntityProvider
	}
	return models.OtpEntityUser
}
