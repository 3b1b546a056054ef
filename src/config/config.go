package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=bookstore port=5432 sslmode=disable TimeZone=Africa/Lagos"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	DEFAULT_CURRENCY           = "NGN"
	DEFAULT_FLUTTERWAVE_URL    = "https://api.flutterwave.com"
	DEFAULT_VERIFY_ATTEMPTS    = 5
	DEFAULT_VERIFY_RETRY_DELAY = 10 * time.Second
	DEFAULT_RECONCILE_INTERVAL = 5 * time.Minute
	DEFAULT_OTP_TTL            = 10 * time.Minute
	DEFAULT_OTP_MAX_ATTEMPTS   = 5
	DEFAULT_LOCK_TTL           = 2 * time.Minute
	DEFAULT_EMAIL_QUEUE        = "emails"
	DEFAULT_EVENTS_TOPIC       = "bookstore-events"

	WEBHOOK_MODE_ASYNC = "async"
	WEBHOOK_MODE_SYNC  = "sync"

	FLUTTERWAVE_SIGNATURE_HEADER = "verif-hash"
)

func APIEnv() string {
	return os.Getenv("API_ENV")
}

func Port() string {
	return getOr("PORT", "8080")
}

func JWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func FlutterwaveBaseURL() string {
	return strings.TrimRight(getOr("FLUTTERWAVE_BASE_URL", DEFAULT_FLUTTERWAVE_URL), "/")
}

func FlutterwaveSecretKey() string {
	return os.Getenv("FLUTTERWAVE_SECRET_KEY")
}

// FlutterwaveSecretHash is the value the gateway sends in the verif-hash header.
// Empty disables the webhook signature check.
func FlutterwaveSecretHash() string {
	return os.Getenv("FLUTTERWAVE_SECRET_HASH")
}

func WebhookMode() string {
	if strings.EqualFold(os.Getenv("FLUTTERWAVE_WEBHOOK_MODE"), WEBHOOK_MODE_SYNC) {
		return WEBHOOK_MODE_SYNC
	}
	return WEBHOOK_MODE_ASYNC
}

func VerifyMaxAttempts() int {
	v, err := strconv.Atoi(os.Getenv("VERIFY_MAX_ATTEMPTS"))
	if err != nil || v < 1 {
		return DEFAULT_VERIFY_ATTEMPTS
	}
	return v
}

func VerifyRetryDelay() time.Duration {
	return durationOr("VERIFY_RETRY_DELAY", DEFAULT_VERIFY_RETRY_DELAY)
}

func ReconcileInterval() time.Duration {
	return durationOr("RECONCILE_INTERVAL", DEFAULT_RECONCILE_INTERVAL)
}

func StrictOrderTransitions() bool {
	v, err := strconv.ParseBool(os.Getenv("ORDER_STRICT_TRANSITIONS"))
	return err == nil && v
}

func EmailQueue() string {
	return getOr("EMAIL_QUEUE", DEFAULT_EMAIL_QUEUE)
}

func EventsTopic() string {
	return getOr("EVENTS_TOPIC", DEFAULT_EVENTS_TOPIC)
}

func MailFrom() string {
	return getOr("MAIL_FROM", "no-reply@bookstore.ng")
}

func getOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
