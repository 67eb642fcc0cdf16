package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/utils"
)

// Thin paginated CRUD over the reference tables. No business logic lives
// here; the interesting flows are in the OTP engine and onboarding steps.

func paginate(c *fiber.Ctx) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

func listResource(c *fiber.Ctx, query *gorm.DB, out interface{}, model interface{}, name string) error {
	page, limit, offset := paginate(c)

	var count int64
	query.Session(&gorm.Session{}).Model(model).Count(&count)

	if err := query.Limit(limit).Offset(offset).Find(out).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to fetch "+name)
	}

	return utils.Success(c, fiber.StatusOK, name+" fetched", fiber.Map{
		name:    out,
		"total": count,
		"page":  page,
		"limit": limit,
		"pages": (int(count) + limit - 1) / limit,
	})
}

func ListCountries(c *fiber.Ctx) error {
	var countries []models.Country
	return listResource(c, db.DB.Order("name"), &countries, &models.Country{}, "countries")
}

func ListCities(c *fiber.Ctx) error {
	query := db.DB.Order("name")
	if countryID := c.Query("country_id"); countryID != "" {
		query = query.Where("country_id = ?", countryID)
	}
	var cities []models.City
	return listResource(c, query, &cities, &models.City{}, "cities")
}

func ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	return listResource(c, db.DB.Order("name"), &categories, &models.Category{}, "categories")
}

func ListSubCategories(c *fiber.Ctx) error {
	query := db.DB.Order("name")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	var subCategories []models.SubCategory
	return listResource(c, query, &subCategories, &models.SubCategory{}, "sub_categories")
}

func ListServices(c *fiber.Ctx) error {
	query := db.DB.Preload("Category").Preload("SubCategory").Order("name")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if subCategoryID := c.Query("sub_category_id"); subCategoryID != "" {
		query = query.Where("sub_category_id = ?", subCategoryID)
	}
	var services []models.Service
	return listResource(c, query, &services, &models.Service{}, "services")
}

func ListCatalogImages(c *fiber.Ctx) error {
	query := db.DB.Order("id")
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var images []models.CatalogImage
	return listResource(c, query, &images, &models.CatalogImage{}, "images")
}

// createResource / updateResource / deleteResource back the admin-side
// reference-data management.

func createResource(c *fiber.Ctx, out interface{}, name string) error {
	if err := c.BodyParser(out); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if err := db.DB.Create(out).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to create "+name)
	}
	return utils.Success(c, fiber.StatusCreated, name+" created", out)
}

func updateResource(c *fiber.Ctx, out interface{}, name string) error {
	id := c.Params("id")
	if err := db.DB.First(out, id).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, name+" not found")
	}
	if err := c.BodyParser(out); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if err := db.DB.Save(out).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to update "+name)
	}
	return utils.Success(c, fiber.StatusOK, name+" updated", out)
}

func deleteResource(c *fiber.Ctx, out interface{}, name string) error {
	id := c.Params("id")
	if err := db.DB.First(out, id).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, name+" not found")
	}
	if err := db.DB.Delete(out).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to delete "+name)
	}
	return utils.Success(c, fiber.StatusOK, name+" deleted", nil)
}

func CreateCountry(c *fiber.Ctx) error  { return createResource(c, new(models.Country), "country") }
func UpdateCountry(c *fiber.Ctx) error  { return updateResource(c, new(models.Country), "country") }
func DeleteCountry(c *fiber.Ctx) error  { return deleteResource(c, new(models.Country), "country") }
func CreateCity(c *fiber.Ctx) error     { return createResource(c, new(models.City), "city") }
func UpdateCity(c *fiber.Ctx) error     { return updateResource(c, new(models.City), "city") }
func DeleteCity(c *fiber.Ctx) error     { return deleteResource(c, new(models.City), "city") }
func CreateCategory(c *fiber.Ctx) error { return createResource(c, new(models.Category), "category") }
func UpdateCategory(c *fiber.Ctx) error { return updateResource(c, new(models.Category), "category") }
func DeleteCategory(c *fiber.Ctx) error { return deleteResource(c, new(models.Category), "category") }
func CreateSubCategory(c *fiber.Ctx) error {
	return createResource(c, new(models.SubCategory), "sub_category")
}
func UpdateSubCategory(c *fiber.Ctx) error {
	return updateResource(c, new(models.SubCategory), "sub_category")
}
func DeleteSubCategory(c *fiber.Ctx) error {
	return deleteResource(c, new(models.SubCategory), "sub_category")
}
func CreateService(c *fiber.Ctx) error { return createResource(c, new(models.Service), "service") }
func UpdateService(c *fiber.Ctx) error { return updateResource(c, new(models.Service), "service") }
func DeleteService(c *fiber.Ctx) error { return deleteResource(c, new(models.Service), "service") }
func CreateCatalogImage(c *fiber.Ctx) error {
	return createResource(c, new(models.CatalogImage), "image")
}
func DeleteCatalogImage(c *fiber.Ctx) error {
	return deleteResource(c, new(models.CatalogImage), "image")
}
