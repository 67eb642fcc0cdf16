package models

import (
	"time"

	"gorm.io/gorm"
)

type OtpEntityType string

const (
	OtpEntityUser     OtpEntityType = "user"
	OtpEntityProvider OtpEntityType = "provider"
	OtpEntityAdmin    OtpEntityType = "admin"
)

type OtpPurpose string

const (
	PurposeRegistration      OtpPurpose = "registration"
	PurposeLogin             OtpPurpose = "login"
	PurposePasswordReset     OtpPurpose = "password_reset"
	PurposePhoneVerification OtpPurpose = "phone_verification"
)

// OtpVerification is the verification ledger. IsVerified doubles as the
// consumed flag: a consumed record can never be matched again.
type OtpVerification struct {
	gorm.Model
	EntityType  OtpEntityType `json:"entity_type" gorm:"index:idx_otp_scope"`
	EntityID    uint          `json:"entity_id" gorm:"index:idx_otp_scope"`
	PhoneNumber string        `json:"phone_number"`
	Purpose     OtpPurpose    `json:"purpose" gorm:"index:idx_otp_scope"`
	OtpCode     string        `json:"-" gorm:"size:6"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Attempts    int           `json:"attempts" gorm:"default:0"`
	IsVerified  bool          `json:"is_verified" gorm:"default:false"`
}

func (o *OtpVerification) Expired() bool {
	return time.Now().After(o.ExpiresAt)
}
