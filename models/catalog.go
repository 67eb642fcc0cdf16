package models

import (
	"gorm.io/gorm"
)

// Reference data browsed by customers and managed by admins.

type Country struct {
	gorm.Model
	Name      string `json:"name" gorm:"unique"`
	Code      string `json:"code"`
	PhoneCode string `json:"phone_code"`
}

type City struct {
	gorm.Model
	CountryID uint    `json:"country_id" gorm:"index"`
	Country   Country `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Name      string  `json:"name"`
}

type Category struct {
	gorm.Model
	Name  string `json:"name" gorm:"unique"`
	Image string `json:"image"`
}

type SubCategory struct {
	gorm.Model
	CategoryID uint     `json:"category_id" gorm:"index"`
	Category   Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name       string   `json:"name"`
}

type Service struct {
	gorm.Model
	CategoryID    uint        `json:"category_id" gorm:"index"`
	Category      Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SubCategoryID uint        `json:"sub_category_id" gorm:"index"`
	SubCategory   SubCategory `json:"sub_category,omitempty" gorm:"foreignKey:SubCategoryID"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
}

// CatalogImage is a shared, predefined asset (banner or service artwork).
// Catalog assets are never owned by a provider and never deleted by
// per-provider cleanup.
type CatalogImage struct {
	gorm.Model
	Kind  string `json:"kind" gorm:"index"` // "banner" or "service"
	Title string `json:"title"`
	URL   string `json:"url"`
}

// GalleryImage belongs to one provider's gallery.
type GalleryImage struct {
	gorm.Model
	ProviderID uint   `json:"provider_id" gorm:"index"`
	URL        string `json:"url"`
	Caption    string `json:"caption"`
}
