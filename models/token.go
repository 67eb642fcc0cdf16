package models

import (
	"time"

	"gorm.io/gorm"
)

// Token is the issued-token ledger. A signed token is only honored while its
// row exists and is unexpired, which makes logout a hard revocation.
type Token struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"index"`
	UserType  string    `json:"user_type"`
	Token     string    `json:"token" gorm:"uniqueIndex;size:512"`
	ExpiresAt time.Time `json:"expires_at"`
}
