package models

import (
	"gorm.io/gorm"
)

// ServiceList is one sellable offering on a provider's menu.
type ServiceList struct {
	gorm.Model
	ProviderID    uint        `json:"provider_id" gorm:"index"`
	ServiceID     uint        `json:"service_id"`
	Service       Service     `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	CategoryID    uint        `json:"category_id"`
	Category      Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SubCategoryID uint        `json:"sub_category_id"`
	SubCategory   SubCategory `json:"sub_category,omitempty" gorm:"foreignKey:SubCategoryID"`
	Price         float64     `json:"price"`
	Image         string      `json:"image"`
}

// ReplaceServiceList swaps the provider's full service menu in a single
// transaction (delete-all then bulk-insert, same contract as availability).
// It returns the image URLs of the replaced rows so the caller can clean up
// uploads that are no longer referenced.
func ReplaceServiceList(db *gorm.DB, providerID uint, items []ServiceList) ([]string, error) {
	var oldImages []string
	err := db.Transaction(func(tx *gorm.DB) error {
		var old []ServiceList
		if err := tx.Where("provider_id = ?", providerID).Find(&old).Error; err != nil {
			return err
		}
		for _, item := range old {
			if item.Image != "" {
				oldImages = append(oldImages, item.Image)
			}
		}
		if err := tx.Unscoped().
			Where("provider_id = ?", providerID).
			Delete(&ServiceList{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].ProviderID = providerID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return oldImages, nil
}
