package provider

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/utils"
)

// ListGallery returns the provider's gallery images.
func ListGallery(c *fiber.Ctx) error {
	p, fail := loadProvider(c, c.Locals("account").(*models.User).ID)
	if p == nil {
		return fail
	}

	var images []models.GalleryImage
	if err := db.DB.Where("provider_id = ?", p.ID).Find(&images).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to fetch gallery")
	}
	return utils.Success(c, fiber.StatusOK, "Gallery fetched", fiber.Map{
		"images": images,
	})
}

// UploadGalleryImage adds one uploaded image to the provider's gallery.
func UploadGalleryImage(c *fiber.Ctx) error {
	p, fail := loadProvider(c, c.Locals("account").(*models.User).ID)
	if p == nil {
		return fail
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "image file is required")
	}

	url, err := uploadImageFile(c, fh, fmt.Sprintf("provider_%d_gallery_%s", p.ID, fh.Filename), "provider_gallery")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, err.Error())
	}

	image := models.GalleryImage{
		ProviderID: p.ID,
		URL:        url,
		Caption:    c.FormValue("caption"),
	}
	if err := db.DB.Create(&image).Error; err != nil {
		log.Printf("Error saving gallery image for provider %d: %v", p.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to save image")
	}

	return utils.Success(c, fiber.StatusCreated, "Image added to gallery", fiber.Map{
		"image": image,
	})
}

// DeleteGalleryImage removes a gallery image, including its stored upload.
func DeleteGalleryImage(c *fiber.Ctx) error {
	p, fail := loadProvider(c, c.Locals("account").(*models.User).ID)
	if p == nil {
		return fail
	}

	id, _ := strconv.Atoi(c.Params("id"))
	var image models.GalleryImage
	if db.DB.Where("provider_id = ?", p.ID).First(&image, id).RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusNotFound, utils.ErrCodeNotFound, "Image not found")
	}

	if err := db.DB.Delete(&image).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to delete image")
	}
	utils.CleanupImages([]string{image.URL})

	return utils.Success(c, fiber.StatusOK, "Image deleted", nil)
}
