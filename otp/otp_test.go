package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/meetvachhani/salon-marketplace/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.OtpVerification{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func newTestEngine(t *testing.T, code string) *Engine {
	t.Helper()
	return NewEngine(setupTestDB(t), Config{
		TTL:          5 * time.Minute,
		MaxAttempts:  5,
		ResendWindow: time.Minute,
	}, NewFixedGenerator(code), nil)
}

func countLive(t *testing.T, e *Engine, entityType models.OtpEntityType, entityID uint, purpose models.OtpPurpose) int64 {
	t.Helper()
	var count int64
	err := e.db.Model(&models.OtpVerification{}).
		Where("entity_type = ? AND entity_id = ? AND purpose = ? AND is_verified = ? AND expires_at > ?",
			entityType, entityID, purpose, false, time.Now()).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestCreateForEntity_SingleLiveRecord(t *testing.T) {
	e := newTestEngine(t, "1111")

	for i := 0; i < 3; i++ {
		_, err := e.CreateForEntity(models.OtpEntityProvider, 42, "5550001", models.PurposeRegistration)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, countLive(t, e, models.OtpEntityProvider, 42, models.PurposeRegistration))
}

func TestCreateForEntity_ScopesAreIndependent(t *testing.T) {
	e := newTestEngine(t, "1111")

	_, err := e.CreateForEntity(models.OtpEntityProvider, 42, "5550001", models.PurposeRegistration)
	require.NoError(t, err)
	_, err = e.CreateForEntity(models.OtpEntityProvider, 42, "5550001", models.PurposePasswordReset)
	require.NoError(t, err)
	_, err = e.CreateForEntity(models.OtpEntityUser, 42, "5550002", models.PurposeRegistration)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countLive(t, e, models.OtpEntityProvider, 42, models.PurposeRegistration))
	assert.EqualValues(t, 1, countLive(t, e, models.OtpEntityProvider, 42, models.PurposePasswordReset))
	assert.EqualValues(t, 1, countLive(t, e, models.OtpEntityUser, 42, models.PurposeRegistration))
}

func TestFindValidForEntity_IgnoresExpired(t *testing.T) {
	e := newTestEngine(t, "1111")

	record, err := e.CreateForEntity(models.OtpEntityUser, 7, "5550001", models.PurposeRegistration)
	require.NoError(t, err)

	found, err := e.FindValidForEntity(models.OtpEntityUser, 7, models.PurposeRegistration)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, record.ID, found.ID)

	// Push the record past its expiry.
	require.NoError(t, e.db.Model(record).Update("expires_at", time.Now().Add(-time.Minute)).Error)

	found, err = e.FindValidForEntity(models.OtpEntityUser, 7, models.PurposeRegistration)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestVerifyForEntity_NoRecord(t *testing.T) {
	e := newTestEngine(t, "1111")

	result, err := e.VerifyForEntity(models.OtpEntityUser, 1, "1111", models.PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "OTP not found or expired", result.Message)
}

func TestVerifyForEntity_Match(t *testing.T) {
	e := newTestEngine(t, "1111")

	_, err := e.CreateForEntity(models.OtpEntityUser, 1, "5550001", models.PurposeRegistration)
	require.NoError(t, err)

	result, err := e.VerifyForEntity(models.OtpEntityUser, 1, "1111", models.PurposeRegistration)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Record)
	assert.Equal(t, 1, result.Record.Attempts)

	// Consumed on success: the same code cannot be replayed.
	result, err = e.VerifyForEntity(models.OtpEntityUser, 1, "1111", models.PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "OTP not found or expired", result.Message)
}

func TestVerifyForEntity_MismatchKeepsRecordLive(t *testing.T) {
	e := newTestEngine(t, "1111")

	_, err := e.CreateForEntity(models.OtpEntityUser, 1, "5550001", models.PurposeRegistration)
	require.NoError(t, err)

	result, err := e.VerifyForEntity(models.OtpEntityUser, 1, "9999", models.PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid OTP", result.Message)

	// A wrong guess does not consume the record; the right code still works.
	result, err = e.VerifyForEntity(models.OtpEntityUser, 1, "1111", models.PurposeRegistration)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestVerifyForEntity_AttemptCapIsTerminal(t *testing.T) {
	e := newTestEngine(t, "1111")

	_, err := e.CreateForEntity(models.OtpEntityProvider, 42, "5550001", models.PurposeRegistration)
	require.NoError(t, err)

	// Attempts 1-4: plain mismatches.
	for i := 0; i < 4; i++ {
		result, err := e.VerifyForEntity(models.OtpEntityProvider, 42, "9999", models.PurposeRegistration)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Invalid OTP", result.Message)
	}

	// Attempt 5 hits the cap and consumes the record.
	result, err := e.VerifyForEntity(models.OtpEntityProvider, 42, "9999", models.PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Too many failed attempts", result.Message)

	// Even the correct code fails now: the scope is consumed.
	result, err = e.VerifyForEntity(models.OtpEntityProvider, 42, "1111", models.PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "OTP not found or expired", result.Message)

	// A fresh code restores the scope.
	_, err = e.CreateForEntity(models.OtpEntityProvider, 42, "5550001", models.PurposeRegistration)
	require.NoError(t, err)
	result, err = e.VerifyForEntity(models.OtpEntityProvider, 42, "1111", models.PurposeRegistration)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestThrottleResend_NoRedisAlwaysAllows(t *testing.T) {
	e := newTestEngine(t, "1111")

	allowed, wait, err := e.ThrottleResend(context.Background(), "5550001", models.PurposeRegistration)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, wait)
}

func TestPurgeExpired(t *testing.T) {
	e := newTestEngine(t, "1111")

	// One live, one consumed, one expired.
	_, err := e.CreateForEntity(models.OtpEntityUser, 1, "5550001", models.PurposeRegistration)
	require.NoError(t, err)
	consumed, err := e.CreateForEntity(models.OtpEntityUser, 2, "5550002", models.PurposeRegistration)
	require.NoError(t, err)
	require.NoError(t, e.consume(consumed))
	expired, err := e.CreateForEntity(models.OtpEntityUser, 3, "5550003", models.PurposeRegistration)
	require.NoError(t, err)
	require.NoError(t, e.db.Model(expired).Update("expires_at", time.Now().Add(-time.Minute)).Error)

	purged, err := e.PurgeExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 2, purged)

	var remaining int64
	e.db.Model(&models.OtpVerification{}).Count(&remaining)
	assert.EqualValues(t, 1, remaining)
}

func TestRandomGeneratorShape(t *testing.T) {
	gen := NewRandomGenerator()
	for i := 0; i < 20; i++ {
		code := gen.Generate()
		assert.Len(t, code, 4)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
