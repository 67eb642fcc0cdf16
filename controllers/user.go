package controllers

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/otp"
	"github.com/meetvachhani/salon-marketplace/utils"
)

type registerRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneCode   string `json:"phone_code" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required,min=6,max=15"`
	Password    string `json:"password" validate:"required,min=8"`
}

// RegisterUser creates an unverified customer account and fires the
// registration OTP.
func RegisterUser(c *fiber.Ctx) error {
	return register(c, models.UserTypeCustomer)
}

// RegisterProvider is the provider-side signup; the account is identical to a
// customer's except for user_type, and the ServiceProvider profile is created
// lazily by the first onboarding step.
func RegisterProvider(c *fiber.Ctx) error {
	return register(c, models.UserTypeProvider)
}

// register is shared by customer and provider signup; only user_type differs.
func register(c *fiber.Ctx, userType models.UserType) error {
	input := new(registerRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var existing models.User
	if db.DB.Where("phone_code = ? AND phone_number = ?", input.PhoneCode, input.PhoneNumber).
		First(&existing).RowsAffected > 0 {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeConflict,
			"An account with this phone number already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to hash password")
	}

	account := models.User{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneCode:   input.PhoneCode,
		PhoneNumber: input.PhoneNumber,
		Password:    string(hashed),
		UserType:    userType,
	}
	if err := db.DB.Create(&account).Error; err != nil {
		log.Printf("Error creating account: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to create account")
	}

	record, err := otp.Default.CreateForEntity(otpEntityFor(&account), account.ID, account.PhoneNumber, models.PurposeRegistration)
	if err != nil {
		log.Printf("Error creating registration OTP for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to create OTP")
	}
	utils.DispatchOTP(account.Email, account.PhoneNumber, record.OtpCode, string(models.PurposeRegistration))

	return utils.Success(c, fiber.StatusCreated, "Registered. Verify the code sent to your phone.", fiber.Map{
		"user_id":   account.ID,
		"user_type": account.UserType,
	})
}

type verifyUserOTPRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	OTP    string `json:"otp" validate:"required,len=4"`
}

// VerifyUserOTP completes customer registration. A matching code marks the
// account verified and logs the customer straight in.
func VerifyUserOTP(c *fiber.Ctx) error {
	input := new(verifyUserOTPRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var account models.User
	if err := db.DB.First(&account, input.UserID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Account not found")
	}

	return verifyRegistration(c, &account, input.OTP)
}

func verifyRegistration(c *fiber.Ctx, account *models.User, code string) error {
	result, err := otp.Default.VerifyForEntity(otpEntityFor(account), account.ID, code, models.PurposeRegistration)
	if err != nil {
		log.Printf("Error verifying registration OTP for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to verify OTP")
	}
	if !result.Success {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, result.Message)
	}

	if err := account.MarkVerified(db.DB); err != nil {
		log.Printf("Error marking user %d verified: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to update account")
	}

	token, err := utils.Issuer.Generate(account.ID, string(account.UserType), nil)
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

type resendUserOTPRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// ResendUserOTP reissues the registration code for an unverified customer.
func ResendUserOTP(c *fiber.Ctx) error {
	input := new(resendUserOTPRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var account models.User
	if err := db.DB.First(&account, input.UserID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Account not found")
	}

	return resendRegistration(c, &account)
}

func resendRegistration(c *fiber.Ctx, account *models.User) error {
	if account.IsVerified {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeConflict, "Account is already verified")
	}

	allowed, wait, _ := otp.Default.ThrottleResend(c.Context(), account.PhoneNumber, models.PurposeRegistration)
	if !allowed {
		return utils.Fail(c, fiber.StatusTooManyRequests, utils.ErrCodeRateLimited,
			"Please wait "+strconv.Itoa(wait)+" seconds before requesting another code")
	}

	record, err := otp.Default.CreateForEntity(otpEntityFor(account), account.ID, account.PhoneNumber, models.PurposeRegistration)
	if err != nil {
		log.Printf("Error recreating registration OTP for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to create OTP")
	}
	utils.DispatchOTP(account.Email, account.PhoneNumber, record.OtpCode, string(models.PurposeRegistration))

	return utils.Success(c, fiber.StatusOK, "A new code has been sent", fiber.Map{
		"user_id": account.ID,
	})
}

// GetProfile returns the authenticated account.
func GetProfile(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)
	account.Password = ""
	return utils.Success(c, fiber.StatusOK, "Profile fetched", fiber.Map{
		"user": account,
	})
}

// DeleteAccount soft-deletes the authenticated account and revokes sessions.
func DeleteAccount(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	if err := db.DB.Delete(account).Error; err != nil {
		log.Printf("Error deleting user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to delete account")
	}
	utils.Issuer.RevokeAll(account.ID, string(account.UserType))

	return utils.Success(c, fiber.StatusOK, "Account deleted", nil)
}
