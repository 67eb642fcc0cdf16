package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meetvachhani/salon-marketplace/controllers"
	provider "github.com/meetvachhani/salon-marketplace/controllers/provider"
	"github.com/meetvachhani/salon-marketplace/middleware"
)

func SetupProviderRoutes(app *fiber.App) {
	p := app.Group("/provider")

	// Public signup + verification
	p.Post("/register", controllers.RegisterProvider)
	p.Post("/verify-verification-otp", provider.VerifyRegistrationOTP)
	p.Post("/resend-otp", provider.ResendRegistrationOTP)

	// Onboarding steps (bearer-auth, multipart where files are involved)
	steps := p.Group("/", middleware.ProviderProtected())
	steps.Post("/step1-subscription-payment", provider.Step1SubscriptionPayment)
	steps.Post("/step2-provider-type", provider.Step2ProviderType)
	steps.Post("/step3-salon-details", provider.Step3SalonDetails)
	steps.Post("/step4-documents-bank", provider.Step4DocumentsAndBank)
	steps.Post("/step5-working-hours", provider.Step5WorkingHours)
	steps.Post("/step6-setup-services", provider.Step6SetupServices)
	steps.Get("/onboarding-progress", provider.GetOnboardingProgress)
	steps.Get("/onboarding-complete", provider.GetOnboardingComplete)

	// Gallery management
	steps.Get("/gallery", provider.ListGallery)
	steps.Post("/gallery", provider.UploadGalleryImage)
	steps.Delete("/gallery/:id", provider.DeleteGalleryImage)
}
