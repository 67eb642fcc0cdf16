package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/utils"
)

// ListProviders is the public directory: approved providers with a complete
// profile, paginated.
func ListProviders(c *fiber.Ctx) error {
	page, limit, offset := paginate(c)

	query := db.DB.Model(&models.ServiceProvider{}).
		Where("step_completed >= ? AND is_approved = ?", models.StepServices, true)
	if providerType := c.Query("provider_type"); providerType != "" {
		query = query.Where("provider_type = ?", providerType)
	}
	if cityID := c.Query("city_id"); cityID != "" {
		query = query.
			Joins("JOIN service_provider_addresses ON service_provider_addresses.user_id = service_providers.user_id").
			Where("service_provider_addresses.city_id = ?", cityID)
	}

	// Count before pagination so total reflects the active filters.
	var count int64
	query.Session(&gorm.Session{}).Count(&count)

	var providers []models.ServiceProvider
	if err := query.Preload("User").Limit(limit).Offset(offset).Find(&providers).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to fetch providers")
	}
	for i := range providers {
		providers[i].User.Password = ""
	}

	return utils.Success(c, fiber.StatusOK, "Providers fetched", fiber.Map{
		"providers": providers,
		"total":     count,
		"page":      page,
		"limit":     limit,
		"pages":     (int(count) + limit - 1) / limit,
	})
}

// GetProviderDetails returns one provider's public profile: address,
// availability, menu and gallery.
func GetProviderDetails(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))

	var p models.ServiceProvider
	if db.DB.Preload("User").
		Where("step_completed >= ? AND is_approved = ?", models.StepServices, true).
		First(&p, id).RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Provider not found")
	}
	p.User.Password = ""

	var address models.ServiceProviderAddress
	db.DB.Preload("Country").Preload("City").Where("user_id = ?", p.UserID).First(&address)

	var availability []models.ServiceProviderAvailability
	db.DB.Where("provider_id = ?", p.ID).Find(&availability)

	var services []models.ServiceList
	db.DB.Preload("Service").Preload("Category").Preload("SubCategory").
		Where("provider_id = ?", p.ID).Find(&services)

	var gallery []models.GalleryImage
	db.DB.Where("provider_id = ?", p.ID).Find(&gallery)

	return utils.Success(c, fiber.StatusOK, "Provider fetched", fiber.Map{
		"provider":     p,
		"address":      address,
		"availability": availability,
		"services":     services,
		"gallery":      gallery,
	})
}
