package provider

import (
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/utils"
)

// stepNames gives prerequisite errors something readable to point at.
var stepNames = map[int]string{
	models.StepSubscription: "subscription payment",
	models.StepProviderType: "provider type",
	models.StepSalonDetails: "salon details",
	models.StepDocuments:    "documents and bank details",
	models.StepWorkingHours: "working hours",
	models.StepServices:     "services setup",
}

// Step1SubscriptionPayment is a stub: it fabricates a subscription id with a
// one-year expiry. It also creates the ServiceProvider row and the empty
// address shell on first contact.
func Step1SubscriptionPayment(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	p, err := loadOrCreateProvider(account.ID)
	if err != nil {
		log.Printf("Error loading provider for user %d: %v", account.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to load provider profile")
	}

	expiry := time.Now().AddDate(1, 0, 0)
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Updates(map[string]interface{}{
			"subscription_id":     utils.GenerateSubscriptionID(),
			"subscription_expiry": expiry,
		}).Error; err != nil {
			return err
		}
		return p.AdvanceStep(tx, models.StepSubscription)
	})
	if err != nil {
		log.Printf("Error recording subscription for provider %d: %v", p.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to record subscription")
	}

	db.DB.First(p, p.ID)
	return utils.Success(c, fiber.StatusOK, "Subscription recorded", fiber.Map{
		"provider": p,
	})
}

type providerTypeRequest struct {
	ProviderType string `json:"provider_type" validate:"required,oneof=individual salon"`
}

// Step2ProviderType sets individual vs salon. Switching later is allowed.
func Step2ProviderType(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	input := new(providerTypeRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	p, err := loadOrCreateProvider(account.ID)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to load provider profile")
	}
	if !p.CanEnter(models.StepProviderType) {
		return stepPrerequisiteError(c, p)
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Update("provider_type", input.ProviderType).Error; err != nil {
			return err
		}
		return p.AdvanceStep(tx, models.StepProviderType)
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to save provider type")
	}

	db.DB.First(p, p.ID)
	return utils.Success(c, fiber.StatusOK, "Provider type saved", fiber.Map{
		"provider": p,
	})
}

// Step3SalonDetails collects location, description and the banner image. The
// banner comes from EITHER a predefined catalog image id or a fresh upload;
// when both are sent the upload wins. salon_name is only required for salons.
func Step3SalonDetails(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	p, fail := loadProvider(c, account.ID)
	if p == nil {
		return fail
	}
	if !p.CanEnter(models.StepSalonDetails) {
		return stepPrerequisiteError(c, p)
	}

	countryID, _ := strconv.Atoi(c.FormValue("country_id"))
	cityID, _ := strconv.Atoi(c.FormValue("city_id"))
	address := strings.TrimSpace(c.FormValue("address"))
	salonName := strings.TrimSpace(c.FormValue("salon_name"))
	description := strings.TrimSpace(c.FormValue("description"))
	bannerImageID, _ := strconv.Atoi(c.FormValue("banner_image_id"))

	var errs []string
	if countryID == 0 {
		errs = append(errs, "country_id is required")
	}
	if cityID == 0 {
		errs = append(errs, "city_id is required")
	}
	if len(address) < 10 || len(address) > 500 {
		errs = append(errs, "address must be between 10 and 500 characters")
	}
	if p.ProviderType == models.ProviderSalon && salonName == "" {
		errs = append(errs, "salon_name is required for salons")
	}
	if len(errs) > 0 {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	var country models.Country
	if db.DB.First(&country, countryID).RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeNotFound, "Country not found")
	}
	var city models.City
	if db.DB.Where("country_id = ?", countryID).First(&city, cityID).RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeNotFound, "City not found")
	}

	// Resolve the banner: upload beats predefined id when both are present.
	oldBanner := p.BannerImage
	var bannerURL string
	if fh, err := c.FormFile("banner_image"); err == nil {
		url, err := uploadImageFile(c, fh, fmt.Sprintf("provider_%d_banner", p.ID), "provider_banners")
		if err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, err.Error())
		}
		bannerURL = url
	} else if bannerImageID > 0 {
		var catalogImage models.CatalogImage
		if db.DB.Where("kind = ?", "banner").First(&catalogImage, bannerImageID).RowsAffected == 0 {
			return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeNotFound, "Banner image not found")
		}
		bannerURL = catalogImage.URL
	} else {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation,
			"banner_image_id or an uploaded banner_image is required")
	}

	lat, _ := strconv.ParseFloat(c.FormValue("latitude"), 64)
	lon, _ := strconv.ParseFloat(c.FormValue("longitude"), 64)

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Updates(map[string]interface{}{
			"salon_name":   salonName,
			"description":  description,
			"banner_image": bannerURL,
		}).Error; err != nil {
			return err
		}
		if err := models.UpsertAddress(tx, account.ID, map[string]interface{}{
			"country_id": countryID,
			"city_id":    cityID,
			"address":    address,
			"latitude":   lat,
			"longitude":  lon,
		}); err != nil {
			return err
		}
		return p.AdvanceStep(tx, models.StepSalonDetails)
	})
	if err != nil {
		log.Printf("Error saving salon details for provider %d: %v", p.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to save salon details")
	}

	if oldBanner != "" && oldBanner != bannerURL {
		utils.CleanupImages([]string{oldBanner})
	}

	db.DB.First(p, p.ID)
	return utils.Success(c, fiber.StatusOK, "Salon details saved", fiber.Map{
		"provider": p,
	})
}

// Step4DocumentsAndBank collects identity documents and bank details.
// National id is always required; commercial registration only for salons;
// the freelance certificate is optional and only meaningful for individuals.
// Uploads run before the transaction so a storage failure aborts with no DB
// mutation.
func Step4DocumentsAndBank(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	p, fail := loadProvider(c, account.ID)
	if p == nil {
		return fail
	}
	if !p.CanEnter(models.StepDocuments) {
		return stepPrerequisiteError(c, p)
	}

	accountHolderName := strings.TrimSpace(c.FormValue("account_holder_name"))
	bankName := strings.TrimSpace(c.FormValue("bank_name"))
	iban := strings.TrimSpace(c.FormValue("iban"))

	var errs []string
	if accountHolderName == "" {
		errs = append(errs, "account_holder_name is required")
	}
	if bankName == "" {
		errs = append(errs, "bank_name is required")
	}
	if iban == "" {
		errs = append(errs, "iban is required")
	}

	nationalID, _ := c.FormFile("national_id")
	if nationalID == nil {
		errs = append(errs, "national_id image is required")
	}
	commercialRegistration, _ := c.FormFile("commercial_registration")
	if p.ProviderType == models.ProviderSalon && commercialRegistration == nil {
		errs = append(errs, "commercial_registration image is required for salons")
	}
	freelanceCertificate, _ := c.FormFile("freelance_certificate")

	if len(errs) > 0 {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	updates := map[string]interface{}{}
	var replaced []string

	upload := func(fh *multipart.FileHeader, suffix, column, old string) error {
		if fh == nil {
			return nil
		}
		url, err := uploadImageFile(c, fh, fmt.Sprintf("provider_%d_%s", p.ID, suffix), "provider_documents")
		if err != nil {
			return err
		}
		updates[column] = url
		if old != "" {
			replaced = append(replaced, old)
		}
		return nil
	}

	if err := upload(nationalID, "national_id", "national_id_image", p.NationalIDImage); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, err.Error())
	}
	if err := upload(commercialRegistration, "commercial_registration", "commercial_registration", p.CommercialRegistration); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, err.Error())
	}
	if p.ProviderType == models.ProviderIndividual {
		if err := upload(freelanceCertificate, "freelance_certificate", "freelance_certificate", p.FreelanceCertificate); err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, err.Error())
		}
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return err
		}
		if err := models.UpsertBankDetails(tx, p.ID, &models.BankDetails{
			AccountHolderName: accountHolderName,
			BankName:          bankName,
			IBAN:              iban,
		}); err != nil {
			return err
		}
		return p.AdvanceStep(tx, models.StepDocuments)
	})
	if err != nil {
		log.Printf("Error saving documents for provider %d: %v", p.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to save documents")
	}

	utils.CleanupImages(replaced)

	db.DB.First(p, p.ID)
	return utils.Success(c, fiber.StatusOK, "Documents and bank details saved", fiber.Map{
		"provider": p,
	})
}

type workingHourEntry struct {
	Day       string `json:"day"`
	FromTime  string `json:"from_time"`
	ToTime    string `json:"to_time"`
	Available *bool  `json:"available"`
}

type workingHoursRequest struct {
	Hours []workingHourEntry `json:"hours"`
}

// Step5WorkingHours replaces the provider's full weekly schedule. Days left
// out of the payload lose their stored availability; this is a replacement,
// not a merge.
func Step5WorkingHours(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	p, fail := loadProvider(c, account.ID)
	if p == nil {
		return fail
	}
	if !p.CanEnter(models.StepWorkingHours) {
		return stepPrerequisiteError(c, p)
	}

	input := new(workingHoursRequest)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "Cannot parse JSON")
	}
	if len(input.Hours) == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "hours must not be empty")
	}

	var errs []string
	rows := make([]models.ServiceProviderAvailability, 0, len(input.Hours))
	for i, entry := range input.Hours {
		day := strings.ToLower(strings.TrimSpace(entry.Day))
		if !models.Weekdays[day] {
			errs = append(errs, fmt.Sprintf("hours[%d]: %q is not a weekday", i, entry.Day))
			continue
		}
		if !utils.IsValidTimeHHMM(entry.FromTime) || !utils.IsValidTimeHHMM(entry.ToTime) {
			errs = append(errs, fmt.Sprintf("hours[%d]: times must be in 24h HH:MM format", i))
			continue
		}
		if !utils.TimeBefore(entry.FromTime, entry.ToTime) {
			errs = append(errs, fmt.Sprintf("hours[%d]: from_time must be before to_time", i))
			continue
		}
		available := true
		if entry.Available != nil {
			available = *entry.Available
		}
		rows = append(rows, models.ServiceProviderAvailability{
			Day:       day,
			FromTime:  entry.FromTime,
			ToTime:    entry.ToTime,
			Available: available,
		})
	}
	if len(errs) > 0 {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := models.ReplaceAvailability(tx, p.ID, rows); err != nil {
			return err
		}
		return p.AdvanceStep(tx, models.StepWorkingHours)
	})
	if err != nil {
		log.Printf("Error saving working hours for provider %d: %v", p.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to save working hours")
	}

	db.DB.First(p, p.ID)
	return utils.Success(c, fiber.StatusOK, "Working hours saved", fiber.Map{
		"provider": p,
	})
}

type serviceEntry struct {
	ServiceID     uint    `json:"service_id"`
	CategoryID    uint    `json:"category_id"`
	SubCategoryID uint    `json:"sub_category_id"`
	Price         float64 `json:"price"`
	ImageID       uint    `json:"image_id"`
}

// Step6SetupServices replaces the provider's service menu. Each entry's image
// comes from a predefined catalog id or a per-entry upload named
// service_image_<index> (upload wins, mirroring the banner rule).
func Step6SetupServices(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	p, fail := loadProvider(c, account.ID)
	if p == nil {
		return fail
	}
	if !p.CanEnter(models.StepServices) {
		return stepPrerequisiteError(c, p)
	}

	raw := c.FormValue("services")
	if raw == "" {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "services is required")
	}
	var entries []serviceEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "services must be a JSON array")
	}
	if len(entries) == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, "services must not be empty")
	}

	items := make([]models.ServiceList, 0, len(entries))
	for i, entry := range entries {
		var errs []string
		if entry.ServiceID == 0 {
			errs = append(errs, fmt.Sprintf("services[%d]: service_id is required", i))
		}
		if entry.CategoryID == 0 {
			errs = append(errs, fmt.Sprintf("services[%d]: category_id is required", i))
		}
		if entry.SubCategoryID == 0 {
			errs = append(errs, fmt.Sprintf("services[%d]: sub_category_id is required", i))
		}
		if entry.Price <= 0 {
			errs = append(errs, fmt.Sprintf("services[%d]: price must be positive", i))
		}
		if len(errs) > 0 {
			return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, strings.Join(errs, ", "))
		}

		var service models.Service
		if db.DB.First(&service, entry.ServiceID).RowsAffected == 0 {
			return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeNotFound,
				fmt.Sprintf("services[%d]: service not found", i))
		}

		var imageURL string
		if fh, err := c.FormFile(fmt.Sprintf("service_image_%d", i)); err == nil {
			url, err := uploadImageFile(c, fh, fmt.Sprintf("provider_%d_service_%d", p.ID, i), "provider_services")
			if err != nil {
				return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation, err.Error())
			}
			imageURL = url
		} else if entry.ImageID > 0 {
			var catalogImage models.CatalogImage
			if db.DB.Where("kind = ?", "service").First(&catalogImage, entry.ImageID).RowsAffected == 0 {
				return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeNotFound,
					fmt.Sprintf("services[%d]: image not found", i))
			}
			imageURL = catalogImage.URL
		} else {
			return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation,
				fmt.Sprintf("services[%d]: image_id or an uploaded image is required", i))
		}

		items = append(items, models.ServiceList{
			ServiceID:     entry.ServiceID,
			CategoryID:    entry.CategoryID,
			SubCategoryID: entry.SubCategoryID,
			Price:         entry.Price,
			Image:         imageURL,
		})
	}

	var replaced []string
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		old, err := models.ReplaceServiceList(tx, p.ID, items)
		if err != nil {
			return err
		}
		replaced = old
		return p.AdvanceStep(tx, models.StepServices)
	})
	if err != nil {
		log.Printf("Error saving services for provider %d: %v", p.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, utils.ErrCodeServer, "Failed to save services")
	}

	utils.CleanupImages(replaced)

	db.DB.First(p, p.ID)
	return utils.Success(c, fiber.StatusOK, "Services saved", fiber.Map{
		"provider":      p,
		"service_count": len(items),
	})
}

// GetOnboardingProgress reports the provider's position in the flow.
func GetOnboardingProgress(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	var p models.ServiceProvider
	if db.DB.Where("user_id = ?", account.ID).First(&p).RowsAffected == 0 {
		return utils.Success(c, fiber.StatusOK, "Onboarding not started", fiber.Map{
			"step_completed": models.StepNone,
			"complete":       false,
		})
	}

	steps := fiber.Map{}
	for step := models.StepSubscription; step <= models.StepServices; step++ {
		steps[stepNames[step]] = p.StepCompleted >= step
	}

	return utils.Success(c, fiber.StatusOK, "Onboarding progress", fiber.Map{
		"step_completed": p.StepCompleted,
		"steps":          steps,
		"complete":       p.OnboardingComplete(),
		"is_approved":    p.IsApproved,
		"provider":       p,
	})
}

// GetOnboardingComplete answers the final-gate question: all six steps done,
// and whether admin approval is still outstanding.
func GetOnboardingComplete(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	var p models.ServiceProvider
	if db.DB.Where("user_id = ?", account.ID).First(&p).RowsAffected == 0 {
		return utils.Success(c, fiber.StatusOK, "Onboarding not started", fiber.Map{
			"complete":          false,
			"approval_required": false,
		})
	}

	return utils.Success(c, fiber.StatusOK, "Onboarding status", fiber.Map{
		"complete":          p.OnboardingComplete(),
		"approval_required": p.OnboardingComplete() && !p.IsApproved,
		"is_approved":       p.IsApproved,
	})
}

// loadOrCreateProvider backs the lazy-creation rule: the first onboarding
// call brings the ServiceProvider row (and its empty address shell) into
// existence.
func loadOrCreateProvider(userID uint) (*models.ServiceProvider, error) {
	var p models.ServiceProvider
	if db.DB.Where("user_id = ?", userID).First(&p).RowsAffected > 0 {
		return &p, nil
	}

	p = models.ServiceProvider{
		UserID:       userID,
		ProviderType: models.ProviderIndividual,
	}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		var address models.ServiceProviderAddress
		if tx.Where("user_id = ?", userID).First(&address).RowsAffected == 0 {
			return tx.Create(&models.ServiceProviderAddress{UserID: userID}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func loadProvider(c *fiber.Ctx, userID uint) (*models.ServiceProvider, error) {
	var p models.ServiceProvider
	if db.DB.Where("user_id = ?", userID).First(&p).RowsAffected == 0 {
		return nil, utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeNotFound,
			"Start onboarding with the subscription step first")
	}
	return &p, nil
}

// stepPrerequisiteError names the next step the provider still has to finish.
// Ordering is enforced here at the edge; completed steps stay re-enterable.
func stepPrerequisiteError(c *fiber.Ctx, p *models.ServiceProvider) error {
	missing := p.StepCompleted + 1
	return utils.Fail(c, fiber.StatusBadRequest, utils.ErrCodeValidation,
		fmt.Sprintf("Complete step %d (%s) first", missing, stepNames[missing]))
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// uploadImageFile saves the multipart file to a temp path and pushes it to
// object storage, returning the delivery URL.
func uploadImageFile(c *fiber.Ctx, fh *multipart.FileHeader, publicID, folder string) (string, error) {
	if !allowedImageTypes[fh.Header.Get("Content-Type")] {
		return "", fmt.Errorf("%s: only JPEG, PNG or WebP images are allowed", fh.Filename)
	}

	tempDir := "uploads"
	if err := os.MkdirAll(tempDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %v", err)
	}

	tempPath := filepath.Join(tempDir, fmt.Sprintf("%s_%s", publicID, fh.Filename))
	if err := c.SaveFile(fh, tempPath); err != nil {
		return "", fmt.Errorf("failed to save %s: %v", fh.Filename, err)
	}
	defer os.Remove(tempPath)

	url, err := utils.Images.UploadImage(tempPath, publicID, folder)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %v", fh.Filename, err)
	}
	return url, nil
}
