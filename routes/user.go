package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meetvachhani/salon-marketplace/controllers"
	"github.com/meetvachhani/salon-marketplace/middleware"
)

func SetupUserRoutes(app *fiber.App) {
	users := app.Group("/users")

	users.Post("/register", controllers.RegisterUser)
	users.Post("/verify-verification-otp", controllers.VerifyUserOTP)
	users.Patch("/resend-otp", controllers.ResendUserOTP)

	users.Get("/me", middleware.UserProtected(), controllers.GetProfile)
	users.Delete("/me", middleware.UserProtected(), controllers.DeleteAccount)
}
