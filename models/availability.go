package models

import (
	"gorm.io/gorm"
)

// Weekdays holds the accepted day names for availability entries.
var Weekdays = map[string]bool{
	"sunday":    true,
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
}

type ServiceProviderAvailability struct {
	gorm.Model
	ProviderID uint   `json:"provider_id" gorm:"index"`
	Day        string `json:"day"`
	FromTime   string `json:"from_time"` // Format "HH:MM" in 24h
	ToTime     string `json:"to_time"`   // Format "HH:MM" in 24h
	Available  bool   `json:"available" gorm:"default:true"`
}

// ReplaceAvailability swaps the provider's full weekly schedule in a single
// transaction. This is a replacement, not a merge: days omitted from rows
// lose whatever was stored for them before.
func ReplaceAvailability(db *gorm.DB, providerID uint, rows []ServiceProviderAvailability) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("provider_id = ?", providerID).
			Delete(&ServiceProviderAvailability{}).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].ProviderID = providerID
		}
		return tx.Create(&rows).Error
	})
}
