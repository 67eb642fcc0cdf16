package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meetvachhani/salon-marketplace/controllers"
	"github.com/meetvachhani/salon-marketplace/middleware"
)

func SetupAdminRoutes(app *fiber.App) {
	admin := app.Group("/admin")

	admin.Post("/login", controllers.AdminLogin)

	protected := admin.Group("/", middleware.AdminProtected())
	protected.Get("/providers/pending", controllers.ListPendingProviders)
	protected.Post("/providers/action", controllers.ProviderAction)

	// Reference-data management
	protected.Post("/countries", controllers.CreateCountry)
	protected.Put("/countries/:id", controllers.UpdateCountry)
	protected.Delete("/countries/:id", controllers.DeleteCountry)
	protected.Post("/cities", controllers.CreateCity)
	protected.Put("/cities/:id", controllers.UpdateCity)
	protected.Delete("/cities/:id", controllers.DeleteCity)
	protected.Post("/categories", controllers.CreateCategory)
	protected.Put("/categories/:id", controllers.UpdateCategory)
	protected.Delete("/categories/:id", controllers.DeleteCategory)
	protected.Post("/sub-categories", controllers.CreateSubCategory)
	protected.Put("/sub-categories/:id", controllers.UpdateSubCategory)
	protected.Delete("/sub-categories/:id", controllers.DeleteSubCategory)
	protected.Post("/services", controllers.CreateService)
	protected.Put("/services/:id", controllers.UpdateService)
	protected.Delete("/services/:id", controllers.DeleteService)
	protected.Post("/catalog-images", controllers.CreateCatalogImage)
	protected.Delete("/catalog-images/:id", controllers.DeleteCatalogImage)
}
