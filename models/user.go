package models

import (
	"time"

	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeCustomer UserType = "user"
	UserTypeProvider UserType = "provider"
)

type UserStatus int

const (
	StatusInactive UserStatus = 0
	StatusActive   UserStatus = 1
	StatusBanned   UserStatus = 2
)

type User struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	UserType    UserType         `json:"user_type" gorm:"default:user"`
	PhoneCode   string           `json:"phone_code" gorm:"uniqueIndex:idx_users_phone"`
	PhoneNumber string           `json:"phone_number" gorm:"uniqueIndex:idx_users_phone"`
	Email       string           `json:"email"`
	Password    string           `json:"password,omitempty"`
	IsVerified  bool             `json:"is_verified"`
	VerifiedAt  *time.Time       `json:"verified_at,omitempty"`
	Status      UserStatus       `json:"status" gorm:"default:1"`
	Provider    *ServiceProvider `json:"provider,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `json:"deleted_at,omitempty" gorm:"index"`
}

// MarkVerified flips the verification flag and records when it happened.
func (u *User) MarkVerified(tx *gorm.DB) error {
	now := time.Now()
	u.IsVerified = true
	u.VerifiedAt = &now
	return tx.Model(u).Updates(map[string]interface{}{
		"is_verified": true,
		"verified_at": now,
	}).Error
}
