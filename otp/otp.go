// Package otp owns the one-time-code lifecycle. Codes are scoped to
// (entity_type, entity_id, purpose); at most one unconsumed, unexpired code
// exists per scope at any time.
package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/meetvachhani/salon-marketplace/models"
	"github.com/meetvachhani/salon-marketplace/utils"
)

type Config struct {
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		TTL:          5 * time.Minute,
		MaxAttempts:  5,
		ResendWindow: 60 * time.Second,
	}
}

// CodeGenerator produces the numeric code for a fresh record.
type CodeGenerator interface {
	Generate() string
}

type randomGenerator struct{}

func (randomGenerator) Generate() string {
	return utils.GenerateOTP()
}

// NewRandomGenerator returns the production generator (crypto/rand, 4 digits).
func NewRandomGenerator() CodeGenerator {
	return randomGenerator{}
}

type fixedGenerator struct {
	code string
}

func (g fixedGenerator) Generate() string {
	return g.code
}

// NewFixedGenerator returns a generator that always emits code. Used by tests
// and staging environments where deliverability is mocked.
func NewFixedGenerator(code string) CodeGenerator {
	return fixedGenerator{code: code}
}

// VerifyResult is a business outcome, not an error: the controller translates
// it into the HTTP envelope.
type VerifyResult struct {
	Success bool
	Message string
	Record  *models.OtpVerification
}

type Engine struct {
	db  *gorm.DB
	cfg Config
	gen CodeGenerator
	rdb *redis.Client // optional, only used for resend throttling
}

func NewEngine(db *gorm.DB, cfg Config, gen CodeGenerator, rdb *redis.Client) *Engine {
	return &Engine{db: db, cfg: cfg, gen: gen, rdb: rdb}
}

// Default is the engine wired in main. Controllers go through it the same way
// they go through db.DB.
var Default *Engine

func Init(db *gorm.DB, cfg Config, gen CodeGenerator, rdb *redis.Client) {
	Default = NewEngine(db, cfg, gen, rdb)
}

// CreateForEntity consumes every live code in the scope, then inserts a fresh
// one. Afterward exactly one live code exists for the scope.
func (e *Engine) CreateForEntity(entityType models.OtpEntityType, entityID uint, phoneNumber string, purpose models.OtpPurpose) (*models.OtpVerification, error) {
	if err := e.db.Model(&models.OtpVerification{}).
		Where("entity_type = ? AND entity_id = ? AND purpose = ? AND is_verified = ?",
			entityType, entityID, purpose, false).
		Update("is_verified", true).Error; err != nil {
		return nil, err
	}

	record := models.OtpVerification{
		EntityType:  entityType,
		EntityID:    entityID,
		PhoneNumber: phoneNumber,
		Purpose:     purpose,
		OtpCode:     e.gen.Generate(),
		ExpiresAt:   time.Now().Add(e.cfg.TTL),
	}
	if err := e.db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindValidForEntity returns the most recent unconsumed, unexpired record for
// the scope, or nil when none exists.
func (e *Engine) FindValidForEntity(entityType models.OtpEntityType, entityID uint, purpose models.OtpPurpose) (*models.OtpVerification, error) {
	var record models.OtpVerification
	err := e.db.
		Where("entity_type = ? AND entity_id = ? AND purpose = ? AND is_verified = ? AND expires_at > ?",
			entityType, entityID, purpose, false, time.Now()).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// VerifyForEntity checks a submitted code against the live record for the
// scope. Attempts count tries, not failures, so the counter moves even on the
// call that eventually succeeds. Reaching the cap consumes the record: after
// that, even the correct code fails until a new one is created.
func (e *Engine) VerifyForEntity(entityType models.OtpEntityType, entityID uint, submittedCode string, purpose models.OtpPurpose) (*VerifyResult, error) {
	record, err := e.FindValidForEntity(entityType, entityID, purpose)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &VerifyResult{Success: false, Message: "OTP not found or expired"}, nil
	}

	record.Attempts++
	if err := e.db.Model(record).Update("attempts", record.Attempts).Error; err != nil {
		return nil, err
	}

	if record.Attempts >= e.cfg.MaxAttempts {
		if err := e.consume(record); err != nil {
			return nil, err
		}
		return &VerifyResult{Success: false, Message: "Too many failed attempts"}, nil
	}

	if record.OtpCode != submittedCode {
		return &VerifyResult{Success: false, Message: "Invalid OTP"}, nil
	}

	if err := e.consume(record); err != nil {
		return nil, err
	}
	return &VerifyResult{Success: true, Message: "OTP verified", Record: record}, nil
}

func (e *Engine) consume(record *models.OtpVerification) error {
	record.IsVerified = true
	return e.db.Model(record).Update("is_verified", true).Error
}

// ThrottleResend enforces one resend per window per phone number. Returns
// false with the seconds remaining when the caller must wait. Without a Redis
// client the throttle is disabled.
func (e *Engine) ThrottleResend(ctx context.Context, phoneNumber string, purpose models.OtpPurpose) (bool, int, error) {
	if e.rdb == nil {
		return true, 0, nil
	}

	key := fmt.Sprintf("otp:resend:%s:%s", purpose, phoneNumber)
	ok, err := e.rdb.SetNX(ctx, key, 1, e.cfg.ResendWindow).Result()
	if err != nil {
		// Redis being down never blocks OTP delivery.
		return true, 0, nil
	}
	if ok {
		return true, 0, nil
	}

	ttl, err := e.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		return false, int(e.cfg.ResendWindow.Seconds()), nil
	}
	return false, int(ttl.Seconds()), nil
}

// PurgeExpired removes consumed and expired rows. Called from the cron job.
func (e *Engine) PurgeExpired() (int64, error) {
	result := e.db.Unscoped().
		Where("is_verified = ? OR expires_at < ?", true, time.Now()).
		Delete(&models.OtpVerification{})
	return result.RowsAffected, result.Error
}
