package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/meetvachhani/salon-marketplace/models"
)

var (
	ErrTokenRevoked = errors.New("token revoked or unknown")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenIssuer signs claims and records every issued token in the Token
// ledger. A token is honored only while its ledger row exists and is
// unexpired AND the signature verifies, which makes logout a hard revocation
// even though the tokens are self-contained.
type TokenIssuer struct {
	DB     *gorm.DB
	Secret string
	TTL    time.Duration
}

// Issuer is the active issuer, set up in main (or by tests).
var Issuer *TokenIssuer

func InitTokenIssuer(db *gorm.DB, secret string, ttl time.Duration) {
	Issuer = &TokenIssuer{DB: db, Secret: secret, TTL: ttl}
}

// Generate signs the claims and persists the raw token with its expiry.
// Extra claims beyond id/user_type/exp are passed through untouched.
func (ti *TokenIssuer) Generate(userID uint, userType string, extra jwt.MapClaims) (string, error) {
	expiresAt := time.Now().Add(ti.TTL)

	claims := jwt.MapClaims{
		"id":        userID,
		"user_type": userType,
		"exp":       expiresAt.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ti.Secret))
	if err != nil {
		return "", err
	}

	row := models.Token{
		UserID:    userID,
		UserType:  userType,
		Token:     signed,
		ExpiresAt: expiresAt,
	}
	if err := ti.DB.Create(&row).Error; err != nil {
		return "", err
	}

	return signed, nil
}

// Verify runs the three independent checks: ledger row present, row
// unexpired, signature valid. All must pass.
func (ti *TokenIssuer) Verify(raw string) (jwt.MapClaims, error) {
	var row models.Token
	if err := ti.DB.Where("token = ?", raw).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}

	if time.Now().After(row.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(ti.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Revoke deletes the ledger row for one token (logout).
func (ti *TokenIssuer) Revoke(raw string) error {
	return ti.DB.Unscoped().Where("token = ?", raw).Delete(&models.Token{}).Error
}

// RevokeAll drops every live token for a user, e.g. after a password reset.
func (ti *TokenIssuer) RevokeAll(userID uint, userType string) error {
	return ti.DB.Unscoped().
		Where("user_id = ? AND user_type = ?", userID, userType).
		Delete(&models.Token{}).Error
}
