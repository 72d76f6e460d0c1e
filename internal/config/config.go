package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultCountryCode    = "+91"
	defaultOTPTTL         = 5 * time.Minute
	defaultOTPMaxAttempts = 5
	defaultOTPResend      = time.Minute
	defaultSweepSchedule  = "@every 15m"
	defaultTimezone       = "Asia/Kolkata"
)

type Config struct {
	ProjectID       string
	Region          string
	LogLevel        string
	Port            string
	KMSKeyName      string
	SMSGatewayURL   string
	SMSSenderID     string
	SMSAPIKey       string
	SMSAPIKeySecret string
	CountryCode     string
	OTPTTL          time.Duration
	OTPMaxAttempts  int
	OTPResend       time.Duration
	SweepSchedule   string
	Timezone        string
	CORSOrigins     []string
}

// New reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		ProjectID:       os.Getenv("PROJECTID"),
		Region:          os.Getenv("REGION"),
		LogLevel:        os.Getenv("LOGLEVEL"),
		Port:            getString("PORT", defaultPort),
		KMSKeyName:      os.Getenv("KMSKEYNAME"),
		SMSGatewayURL:   os.Getenv("SMSGATEWAYURL"),
		SMSSenderID:     os.Getenv("SMSSENDERID"),
		SMSAPIKey:       os.Getenv("SMSAPIKEY"),
		SMSAPIKeySecret: os.Getenv("SMSAPIKEYSECRET"),
		CountryCode:     getString("COUNTRYCODE", defaultCountryCode),
		OTPTTL:          getDuration("OTPTTL", defaultOTPTTL),
		OTPMaxAttempts:  getInt("OTPMAXATTEMPTS", defaultOTPMaxAttempts),
		OTPResend:       getDuration("OTPRESENDINTERVAL", defaultOTPResend),
		SweepSchedule:   getString("SWEEPSCHEDULE", defaultSweepSchedule),
		Timezone:        getString("TIMEZONE", defaultTimezone),
		CORSOrigins:     getList("CORSORIGINS"),
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
