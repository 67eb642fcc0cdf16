package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting read from the environment. It is loaded
// once in main and handed to the pieces that need it (token issuer, OTP engine)
// so tests can construct their own with fixed secrets and windows.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string

	JWTSecret string
	TokenTTL  time.Duration

	OTPTTL          time.Duration
	OTPMaxAttempts  int
	OTPResendWindow time.Duration

	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return &Config{
		Port:        getEnv("PORT", "8000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		JWTSecret: getEnv("JWT_SECRET", "solid_secret_key"),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),

		OTPTTL:          getDuration("OTP_TTL", 5*time.Minute),
		OTPMaxAttempts:  getInt("OTP_MAX_ATTEMPTS", 5),
		OTPResendWindow: getDuration("OTP_RESEND_WINDOW", 60*time.Second),

		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  smtpPort,
		EmailUser: os.Getenv("EMAIL_USER"),
		EmailPass: os.Getenv("EMAIL_PASS"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
