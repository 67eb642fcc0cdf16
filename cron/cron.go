package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/otp"
)

// StartCronJobs initializes and starts the scheduled maintenance jobs
func StartCronJobs() {
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()

	// Hourly: drop consumed/expired OTP rows and lapsed token ledger rows
	if _, err := c.AddFunc("0 * * * *", purgeExpiredRecords); err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	// Daily: flag providers whose subscription lapsed
	if _, err := c.AddFunc("0 3 * * *", checkLapsedSubscriptions); err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}

	c.Start()
	log.Println("Cron job scheduler started")
}

func purgeExpiredRecords() {
	if otp.Default != nil {
		purged, err := otp.Default.PurgeExpired()
		if err != nil {
			log.Printf("Error purging OTP records: %v", err)
		} else if purged > 0 {
			log.Printf("Purged %d OTP records", purged)
		}
	}

	result := db.DB.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&models.Token{})
	if result.Error != nil {
		log.Printf("Error purging token ledger: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Purged %d expired tokens", result.RowsAffected)
	}
}

func checkLapsedSubscriptions() {
	var providers []models.ServiceProvider
	err := db.DB.Preload("User").
		Where("subscription_expiry IS NOT NULL AND subscription_expiry < ?", time.Now()).
		Find(&providers).Error
	if err != nil {
		log.Printf("Error fetching lapsed subscriptions: %v", err)
		return
	}

	for _, p := range providers {
		log.Printf("Subscription lapsed for provider %d (user %d), expired %s",
			p.ID, p.UserID, p.SubscriptionExpiry.Format("2006-01-02"))
	}
}
