package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meetvachhani/salon-marketplace/controllers"
)

// SetupCatalogRoutes exposes the public browse surface: reference data and
// the provider directory.
func SetupCatalogRoutes(app *fiber.App) {
	app.Get("/countries", controllers.ListCountries)
	app.Get("/cities", controllers.ListCities)
	app.Get("/categories", controllers.ListCategories)
	app.Get("/sub-categories", controllers.ListSubCategories)
	app.Get("/services", controllers.ListServices)
	app.Get("/catalog-images", controllers.ListCatalogImages)

	app.Get("/providers", controllers.ListProviders)
	app.Get("/providers/:id", controllers.GetProviderDetails)
}
