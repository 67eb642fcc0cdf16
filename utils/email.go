package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/gomail.v2"
)

func SendEmail(to, subject, body string) error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("EMAIL_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("EMAIL_USER"),
		os.Getenv("EMAIL_PASS"),
	)

	return d.DialAndSend(m)
}

// NotifyOTP delivers a one-time code over the side channel. Tests and
// environments without SMTP override it with a no-op.
var NotifyOTP = func(email, phone, code, purpose string) error {
	if email == "" {
		log.Printf("OTP for %s (%s): no email on file, skipping delivery", phone, purpose)
		return nil
	}
	subject := "Your verification code"
	body := fmt.Sprintf(`
		<p>Your one-time code is <strong>%s</strong>.</p>
		<p>It expires in 5 minutes. If you did not request this, ignore this message.</p>
	`, code)
	return SendEmail(email, subject, body)
}

// DispatchOTP fires delivery in the background. Delivery failures are logged
// and swallowed; the OTP record is already committed.
func DispatchOTP(email, phone, code, purpose string) {
	go func() {
		if err := NotifyOTP(email, phone, code, purpose); err != nil {
			log.Printf("Failed to deliver OTP to %s (%s): %v", phone, purpose, err)
		}
	}()
}
