package models

import (
	"gorm.io/gorm"
)

type ServiceProviderAddress struct {
	gorm.Model
	UserID    uint    `json:"user_id" gorm:"uniqueIndex"`
	CountryID uint    `json:"country_id"`
	Country   Country `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	CityID    uint    `json:"city_id"`
	City      City    `json:"city,omitempty" gorm:"foreignKey:CityID"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpsertAddress updates the user's address row if one exists, else creates it.
func UpsertAddress(tx *gorm.DB, userID uint, fields map[string]interface{}) error {
	var existing ServiceProviderAddress
	result := tx.Where("user_id = ?", userID).First(&existing)
	if result.RowsAffected > 0 {
		return tx.Model(&existing).Updates(fields).Error
	}
	fields["user_id"] = userID
	return tx.Model(&ServiceProviderAddress{}).Create(fields).Error
}
