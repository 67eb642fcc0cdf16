package models

import (
	"gorm.io/gorm"
)

type BankDetails struct {
	gorm.Model
	ProviderID        uint   `json:"provider_id" gorm:"uniqueIndex"`
	AccountHolderName string `json:"account_holder_name"`
	BankName          string `json:"bank_name"`
	IBAN              string `json:"iban"`
}

// UpsertBankDetails updates the provider's bank row if one exists, else creates it.
func UpsertBankDetails(tx *gorm.DB, providerID uint, details *BankDetails) error {
	var existing BankDetails
	result := tx.Where("provider_id = ?", providerID).First(&existing)
	details.ProviderID = providerID
	if result.RowsAffected > 0 {
		details.ID = existing.ID
		details.CreatedAt = existing.CreatedAt
		return tx.Save(details).Error
	}
	return tx.Create(details).Error
}
