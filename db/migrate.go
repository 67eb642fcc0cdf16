package db

import (
	"fmt"
	"log"

	"github.com/meetvachhani/salon-marketplace/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
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
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
