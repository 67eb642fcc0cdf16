package provider_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/otp"
	"github.com/meetvachhani/salon-marketplace/routes"
	"github.com/meetvachhani/salon-marketplace/utils"
)

// fakeImageStore stands in for Cloudinary. Every upload yields a URL under
// the provider_* folders so cleanup treats it as a provider-owned asset.
type fakeImageStore struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (f *fakeImageStore) UploadImage(file interface{}, publicID string, folder string) (string, error) {
	url := fmt.Sprintf("https://images.test/upload/%s/%s.png", folder, publicID)
	f.mu.Lock()
	f.uploaded = append(f.uploaded, url)
	f.mu.Unlock()
	return url, nil
}

func (f *fakeImageStore) DeleteImage(url string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, url)
	f.mu.Unlock()
	return nil
}

func (f *fakeImageStore) IsCustomUploadedImage(url string) bool {
	for _, folder := range []string{"provider_banners", "provider_documents", "provider_services", "provider_gallery"} {
		if strings.Contains(url, "/"+folder+"/") {
			return true
		}
	}
	return false
}

type fixture struct {
	app   *fiber.App
	store *fakeImageStore
}

func setupProviderApp(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.ServiceProvider{},
		&models.ServiceProviderAddress{},
		&models.BankDetails{},
		&models.ServiceProviderAvailability{},
		&models.ServiceList{},
		&models.OtpVerification{},
		&models.Token{},
		&models.Country{},
		&models.City{},
		&models.Category{},
		&models.SubCategory{},
		&models.Service{},
		&models.CatalogImage{},
		&models.GalleryImage{},
	)
	require.NoError(t, err)

	db.DB = gdb
	utils.InitTokenIssuer(gdb, "test-secret", time.Hour)
	otp.Init(gdb, otp.Config{TTL: 5 * time.Minute, MaxAttempts: 5, ResendWindow: time.Minute},
		otp.NewFixedGenerator("1111"), nil)

	prevNotify := utils.NotifyOTP
	utils.NotifyOTP = func(email, phone, code, purpose string) error { return nil }

	store := &fakeImageStore{}
	prevImages := utils.Images
	utils.Images = store

	t.Cleanup(func() {
		utils.NotifyOTP = prevNotify
		utils.Images = prevImages
		os.RemoveAll("uploads")
	})

	app := fiber.New()
	routes.SetupProviderRoutes(app)
	routes.SetupAdminRoutes(app)
	return &fixture{app: app, store: store}
}

var phoneSeq atomic.Uint32

func seedProvider(t *testing.T, step int) (*models.ServiceProvider, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	account := models.User{
		FirstName:   "Rana",
		LastName:    "Haddad",
		UserType:    models.UserTypeProvider,
		PhoneCode:   "+962",
		PhoneNumber: fmt.Sprintf("79%07d", phoneSeq.Add(1)),
		Password:    string(hashed),
		IsVerified:  true,
		VerifiedAt:  &now,
		Status:      models.StatusActive,
	}
	require.NoError(t, db.DB.Create(&account).Error)

	p := models.ServiceProvider{
		UserID:        account.ID,
		ProviderType:  models.ProviderIndividual,
		StepCompleted: step,
	}
	require.NoError(t, db.DB.Create(&p).Error)
	require.NoError(t, db.DB.Create(&models.ServiceProviderAddress{UserID: account.ID}).Error)

	token, err := utils.Issuer.Generate(account.ID, "provider", nil)
	require.NoError(t, err)
	return &p, token
}

func seedCatalog(t *testing.T) (city models.City, service models.Service, banner, artwork models.CatalogImage) {
	t.Helper()

	country := models.Country{Name: "Jordan", Code: "JO", PhoneCode: "+962"}
	require.NoError(t, db.DB.Create(&country).Error)
	city = models.City{CountryID: country.ID, Name: "Amman"}
	require.NoError(t, db.DB.Create(&city).Error)

	category := models.Category{Name: "Hair"}
	require.NoError(t, db.DB.Create(&category).Error)
	sub := models.SubCategory{CategoryID: category.ID, Name: "Styling"}
	require.NoError(t, db.DB.Create(&sub).Error)
	service = models.Service{CategoryID: category.ID, SubCategoryID: sub.ID, Name: "Blowout"}
	require.NoError(t, db.DB.Create(&service).Error)

	banner = models.CatalogImage{Kind: "banner", Title: "Default banner", URL: "https://images.test/upload/catalog/banner1.png"}
	require.NoError(t, db.DB.Create(&banner).Error)
	artwork = models.CatalogImage{Kind: "service", Title: "Default artwork", URL: "https://images.test/upload/catalog/service1.png"}
	require.NoError(t, db.DB.Create(&artwork).Error)
	return city, service, banner, artwork
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return execute(t, app, req)
}

func postForm(t *testing.T, app *fiber.App, path string, fields map[string]string, files map[string][]byte, token string) (int, map[string]interface{}) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for name, content := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, name, name+".png"))
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return execute(t, app, req)
}

func getPath(t *testing.T, app *fiber.App, path, token string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return execute(t, app, req)
}

func execute(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func stepCompletedOf(env map[string]interface{}) int {
	data := env["data"].(map[string]interface{})
	p := data["provider"].(map[string]interface{})
	return int(p["step_completed"].(float64))
}

func errorMessage(env map[string]interface{}) string {
	msg, _ := env["error"].(map[string]interface{})["message"].(string)
	return msg
}

func TestOnboardingFullFlow(t *testing.T) {
	f := setupProviderApp(t)
	city, service, banner, artwork := seedCatalog(t)
	p, token := seedProvider(t, models.StepNone)

	status, env := postJSON(t, f.app, "/provider/step1-subscription-payment", fiber.Map{}, token)
	require.Equal(t, http.StatusOK, status, "step1: %v", env)
	assert.Equal(t, 1, stepCompletedOf(env))

	status, env = postJSON(t, f.app, "/provider/step2-provider-type", fiber.Map{
		"provider_type": "salon",
	}, token)
	require.Equal(t, http.StatusOK, status, "step2: %v", env)
	assert.Equal(t, 2, stepCompletedOf(env))

	status, env = postForm(t, f.app, "/provider/step3-salon-details", map[string]string{
		"country_id":      fmt.Sprint(city.CountryID),
		"city_id":         fmt.Sprint(city.ID),
		"address":         "12 Rainbow Street, Amman",
		"salon_name":      "Velvet Room",
		"banner_image_id": fmt.Sprint(banner.ID),
	}, nil, token)
	require.Equal(t, http.StatusOK, status, "step3: %v", env)
	assert.Equal(t, 3, stepCompletedOf(env))

	status, env = postForm(t, f.app, "/provider/step4-documents-bank", map[string]string{
		"account_holder_name": "Rana Haddad",
		"bank_name":           "Bank of Jordan",
		"iban":                "JO94CBJO0010000000000131000302",
	}, map[string][]byte{
		"national_id":             []byte("national-id-scan"),
		"commercial_registration": []byte("registration-scan"),
	}, token)
	require.Equal(t, http.StatusOK, status, "step4: %v", env)
	assert.Equal(t, 4, stepCompletedOf(env))
	assert.Len(t, f.store.uploaded, 2)

	status, env = postJSON(t, f.app, "/provider/step5-working-hours", fiber.Map{
		"hours": []fiber.Map{
			{"day": "monday", "from_time": "09:00", "to_time": "18:00"},
			{"day": "tuesday", "from_time": "09:00", "to_time": "18:00"},
		},
	}, token)
	require.Equal(t, http.StatusOK, status, "step5: %v", env)
	assert.Equal(t, 5, stepCompletedOf(env))

	services, err := json.Marshal([]fiber.Map{{
		"service_id":      service.ID,
		"category_id":     service.CategoryID,
		"sub_category_id": service.SubCategoryID,
		"price":           25.0,
		"image_id":        artwork.ID,
	}})
	require.NoError(t, err)
	status, env = postForm(t, f.app, "/provider/step6-setup-services", map[string]string{
		"services": string(services),
	}, nil, token)
	require.Equal(t, http.StatusOK, status, "step6: %v", env)
	assert.Equal(t, 6, stepCompletedOf(env))

	// The profile is now complete but unapproved, so provider routes close
	// until an admin signs off.
	status, env = getPath(t, f.app, "/provider/onboarding-complete", token)
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Profile is pending admin verification", errorMessage(env))

	require.NoError(t, db.DB.Model(&models.ServiceProvider{}).
		Where("id = ?", p.ID).Update("is_approved", true).Error)

	status, env = getPath(t, f.app, "/provider/onboarding-complete", token)
	require.Equal(t, http.StatusOK, status)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, true, data["complete"])
	assert.Equal(t, false, data["approval_required"])
}

func TestStepOrderIsEnforced(t *testing.T) {
	f := setupProviderApp(t)
	_, token := seedProvider(t, models.StepSalonDetails)

	status, env := postJSON(t, f.app, "/provider/step5-working-hours", fiber.Map{
		"hours": []fiber.Map{{"day": "monday", "from_time": "09:00", "to_time": "18:00"}},
	}, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Complete step 4 (documents and bank details) first", errorMessage(env))
}

func TestStepCompletedNeverRegresses(t *testing.T) {
	f := setupProviderApp(t)
	_, token := seedProvider(t, models.StepDocuments)

	status, env := postJSON(t, f.app, "/provider/step2-provider-type", fiber.Map{
		"provider_type": "individual",
	}, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int(models.StepDocuments), stepCompletedOf(env))
}

func TestSalonNameRequiredOnlyForSalons(t *testing.T) {
	f := setupProviderApp(t)
	city, _, banner, _ := seedCatalog(t)

	fields := func() map[string]string {
		return map[string]string{
			"country_id":      fmt.Sprint(city.CountryID),
			"city_id":         fmt.Sprint(city.ID),
			"address":         "12 Rainbow Street, Amman",
			"banner_image_id": fmt.Sprint(banner.ID),
		}
	}

	_, token := seedProvider(t, models.StepProviderType)
	status, env := postForm(t, f.app, "/provider/step3-salon-details", fields(), nil, token)
	require.Equal(t, http.StatusOK, status, "individual without salon_name: %v", env)

	salon, salonToken := seedProvider(t, models.StepProviderType)
	require.NoError(t, db.DB.Model(salon).Update("provider_type", models.ProviderSalon).Error)

	status, env = postForm(t, f.app, "/provider/step3-salon-details", fields(), nil, salonToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errorMessage(env), "salon_name is required for salons")
}

func TestStep3RequiresBanner(t *testing.T) {
	f := setupProviderApp(t)
	city, _, _, _ := seedCatalog(t)
	_, token := seedProvider(t, models.StepProviderType)

	status, env := postForm(t, f.app, "/provider/step3-salon-details", map[string]string{
		"country_id": fmt.Sprint(city.CountryID),
		"city_id":    fmt.Sprint(city.ID),
		"address":    "12 Rainbow Street, Amman",
	}, nil, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errorMessage(env), "banner_image_id or an uploaded banner_image is required")
}

func TestStep3UploadBeatsCatalogID(t *testing.T) {
	f := setupProviderApp(t)
	city, _, banner, _ := seedCatalog(t)
	_, token := seedProvider(t, models.StepProviderType)

	status, env := postForm(t, f.app, "/provider/step3-salon-details", map[string]string{
		"country_id":      fmt.Sprint(city.CountryID),
		"city_id":         fmt.Sprint(city.ID),
		"address":         "12 Rainbow Street, Amman",
		"banner_image_id": fmt.Sprint(banner.ID),
	}, map[string][]byte{
		"banner_image": []byte("fresh-banner"),
	}, token)
	require.Equal(t, http.StatusOK, status, "step3: %v", env)

	data := env["data"].(map[string]interface{})
	bannerURL := data["provider"].(map[string]interface{})["banner_image"].(string)
	assert.Contains(t, bannerURL, "provider_banners")
	assert.NotEqual(t, banner.URL, bannerURL)
}

func TestStep5RejectsBadHours(t *testing.T) {
	f := setupProviderApp(t)
	_, token := seedProvider(t, models.StepDocuments)

	status, env := postJSON(t, f.app, "/provider/step5-working-hours", fiber.Map{
		"hours": []fiber.Map{
			{"day": "funday", "from_time": "09:00", "to_time": "18:00"},
			{"day": "monday", "from_time": "19:00", "to_time": "09:00"},
			{"day": "tuesday", "from_time": "9am", "to_time": "6pm"},
		},
	}, token)
	assert.Equal(t, http.StatusBadRequest, status)
	msg := errorMessage(env)
	assert.Contains(t, msg, "hours[0]")
	assert.Contains(t, msg, "not a weekday")
	assert.Contains(t, msg, "hours[1]: from_time must be before to_time")
	assert.Contains(t, msg, "hours[2]: times must be in 24h HH:MM format")
}

func TestStep6ReplacesServiceMenu(t *testing.T) {
	f := setupProviderApp(t)
	_, service, _, artwork := seedCatalog(t)
	p, token := seedProvider(t, models.StepWorkingHours)

	entry := fiber.Map{
		"service_id":      service.ID,
		"category_id":     service.CategoryID,
		"sub_category_id": service.SubCategoryID,
		"price":           30.0,
		"image_id":        artwork.ID,
	}
	services, err := json.Marshal([]fiber.Map{entry, entry})
	require.NoError(t, err)

	status, env := postForm(t, f.app, "/provider/step6-setup-services", map[string]string{
		"services": string(services),
	}, nil, token)
	require.Equal(t, http.StatusOK, status, "step6: %v", env)
	assert.EqualValues(t, 2, env["data"].(map[string]interface{})["service_count"])

	var count int64
	db.DB.Model(&models.ServiceList{}).Where("provider_id = ?", p.ID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestGalleryUploadAndDelete(t *testing.T) {
	f := setupProviderApp(t)
	p, token := seedProvider(t, models.StepSubscription)

	status, env := postForm(t, f.app, "/provider/gallery", map[string]string{
		"caption": "New chairs",
	}, map[string][]byte{
		"image": []byte("gallery-shot"),
	}, token)
	require.Equal(t, http.StatusCreated, status, "upload: %v", env)
	image := env["data"].(map[string]interface{})["image"].(map[string]interface{})
	imageID := int(image["ID"].(float64))
	assert.Contains(t, image["url"], "provider_gallery")

	status, env = getPath(t, f.app, "/provider/gallery", token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env["data"].(map[string]interface{})["images"], 1)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/provider/gallery/%d", imageID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, _ = execute(t, f.app, req)
	require.Equal(t, http.StatusOK, status)

	var count int64
	db.DB.Model(&models.GalleryImage{}).Where("provider_id = ?", p.ID).Count(&count)
	assert.Zero(t, count)
}
