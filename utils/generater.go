package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

func GenerateOTP() string {
	// Generate a 4-digit OTP
	var number [2]byte
	rand.Read(number[:])
	return fmt.Sprintf("%04d", (int(number[0])<<8|int(number[1]))%10000)
}

// GenerateSubscriptionID returns an opaque id for the stubbed subscription step.
func GenerateSubscriptionID() string {
	return "sub_" + uuid.NewString()
}
