package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meetvachhani/salon-marketplace/controllers"
	"github.com/meetvachhani/salon-marketplace/middleware"
)

// SetupAuthRoutes configures the unified authentication routes
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/login", controllers.Login)
	auth.Post("/forgot-password", controllers.ForgotPassword)
	auth.Post("/verify-forgot-password-otp", controllers.VerifyForgotPasswordOTP)
	auth.Post("/reset-password", controllers.ResetPassword)

	// Logout works for either account type; both middlewares share the ledger.
	auth.Post("/logout", middleware.UserProtected(), controllers.Logout)
	auth.Post("/provider-logout", middleware.ProviderProtected(), controllers.Logout)
}
