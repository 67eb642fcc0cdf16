package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/utils"
)

// UserProtected gates routes for verified customer accounts.
func UserProtected() fiber.Handler {
	return protected("user")
}

// ProviderProtected gates routes for provider accounts.
func ProviderProtected() fiber.Handler {
	return protected("provider")
}

// AdminProtected gates routes for admin accounts.
func AdminProtected() fiber.Handler {
	return protected("admin")
}

func protected(audience string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(utils.Issuer.Secret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Invalid token")
			}

			// Ledger check on top of the signature: revoked tokens die here.
			claims, err := utils.Issuer.Verify(token.Raw)
			if err != nil {
				return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Invalid or expired token")
			}

			userType, _ := claims["user_type"].(string)
			if userType != audience {
				return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Access denied for this account type")
			}

			idVal, ok := claims["id"].(float64)
			if !ok {
				return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Invalid token claims")
			}
			id := uint(idVal)

			switch audience {
			case "admin":
				var admin models.Admin
				if err := db.DB.First(&admin, id).Error; err != nil {
					return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Admin account not found")
				}
				c.Locals("adminID", admin.ID)
				c.Locals("admin", &admin)

			case "provider":
				var account models.User
				if err := db.DB.Where("user_type = ?", models.UserTypeProvider).First(&account, id).Error; err != nil {
					return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Account not found")
				}
				if account.Status != models.StatusActive {
					return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Account is not active")
				}

				var provider models.ServiceProvider
				if err := db.DB.Where("user_id = ?", account.ID).First(&provider).Error; err == nil {
					if pendingAdminReview(&provider) {
						return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden,
							"Profile is pending admin verification")
					}
					c.Locals("provider", &provider)
				}
				c.Locals("userID", account.ID)
				c.Locals("account", &account)

			case "user":
				var account models.User
				if err := db.DB.First(&account, id).Error; err != nil {
					return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Account not found")
				}
				if account.Status != models.StatusActive {
					return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Account is not active")
				}
				c.Locals("userID", account.ID)
				c.Locals("account", &account)
			}

			return c.Next()
		},
	})
}

// pendingAdminReview is true for a provider who finished onboarding and built
// a service menu but has not been approved yet. Such accounts hold a valid
// token (login keeps working so the client can poll approval state) but are
// turned away from provider routes until an admin approves them.
func pendingAdminReview(provider *models.ServiceProvider) bool {
	if provider.StepCompleted < models.StepServices || provider.IsApproved {
		return false
	}
	var count int64
	db.DB.Model(&models.ServiceList{}).Where("provider_id = ?", provider.ID).Count(&count)
	return count > 0
}

// jwtError handles missing/undecodable tokens
func jwtError(c *fiber.Ctx, err error) error {
	return utils.Fail(c, fiber.StatusForbidden, utils.ErrCodeForbidden, "Invalid or expired token")
}
