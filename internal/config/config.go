package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port          string `validate:"required,numeric"`
	Env           string `validate:"oneof=production development test"`
	LogLevel      string `validate:"oneof=debug info warn error"`
	TrustProxy    bool
	DatabaseURL   string
	SQLitePath    string `validate:"required_without=DatabaseURL"`
	LocalTimezone *time.Location

	OTPProvider       string        `validate:"oneof=msg91 twilio"`
	OTPCountryCode    string        `validate:"required,numeric"`
	OTPTimeout        time.Duration `validate:"gt=0"`
	OTPTestPhone      string
	OTPTestCode       string
	VerifiedCacheSize int `validate:"gte=1"`

	MSG91AuthKey    string
	MSG91BaseURL    string `validate:"required,url"`
	MSG91TemplateID string `validate:"required"`
	MSG91Sender     string `validate:"required"`

	TwilioAccountSID       string `validate:"required_if=OTPProvider twilio"`
	TwilioAuthToken        string `validate:"required_if=OTPProvider twilio"`
	TwilioVerifyServiceSID string `validate:"required_if=OTPProvider twilio"`

	ExpoAccessToken string
	ExpoPushURL     string `validate:"required,url"`

	ShopifyStoreDomain     string
	ShopifyAccessToken     string
	ShopifyStorefrontToken string
	ShopifyAPIVersion      string        `validate:"required"`
	CatalogCacheTTL        time.Duration `validate:"gt=0"`
	RedisURL               string

	OpenAIAPIKey string
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	timezoneName := getenvDefault("LOCAL_TIMEZONE", "Local")
	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		log.Printf("config: invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", timezoneName, err)
		location = time.Local
	}

	return &Config{
		Port:          getenvDefault("PORT", "3001"),
		Env:           getenvDefault("APP_ENV", "production"),
		LogLevel:      getenvDefault("LOG_LEVEL", "info"),
		TrustProxy:    ParseBoolEnv("TRUST_PROXY", false),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getenvDefault("SQLITE_PATH", "muditam.db"),
		LocalTimezone: location,

		OTPProvider:       getenvDefault("OTP_PROVIDER", "msg91"),
		OTPCountryCode:    getenvDefault("OTP_COUNTRY_CODE", "91"),
		OTPTimeout:        ParseDurationEnv("OTP_TIMEOUT", 10*time.Second),
		OTPTestPhone:      getenvDefault("OTP_TEST_PHONE", "1234567890"),
		OTPTestCode:       getenvDefault("OTP_TEST_CODE", "098765"),
		VerifiedCacheSize: ParseIntEnv("VERIFIED_CACHE_SIZE", 10000),

		MSG91AuthKey:    os.Getenv("MSG91_AUTHKEY"),
		MSG91BaseURL:    getenvDefault("MSG91_BASE_URL", "https://control.msg91.com"),
		MSG91TemplateID: getenvDefault("MSG91_TEMPLATE_ID", "6883510ad6fc0533183824b2"),
		MSG91Sender:     getenvDefault("MSG91_SENDER", "MUDITM"),

		TwilioAccountSID:       os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:        os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioVerifyServiceSID: os.Getenv("TWILIO_VERIFY_SERVICE_SID"),

		ExpoAccessToken: os.Getenv("EXPO_ACCESS_TOKEN"),
		ExpoPushURL:     getenvDefault("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),

		ShopifyStoreDomain:     os.Getenv("SHOPIFY_STORE_DOMAIN"),
		ShopifyAccessToken:     os.Getenv("SHOPIFY_ACCESS_TOKEN"),
		ShopifyStorefrontToken: os.Getenv("SHOPIFY_STOREFRONT_TOKEN"),
		ShopifyAPIVersion:      getenvDefault("SHOPIFY_API_VERSION", "2023-10"),
		CatalogCacheTTL:        ParseDurationEnv("CATALOG_CACHE_TTL", 5*time.Minute),
		RedisURL:               os.Getenv("REDIS_URL"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
	}
}

// Validate checks the loaded values against their struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Warnings lists settings that are allowed to be empty but degrade a feature.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.OTPProvider == "msg91" && c.MSG91AuthKey == "" {
		warnings = append(warnings, "MSG91_AUTHKEY is not set, OTP calls will be rejected upstream")
	}
	if c.ShopifyStoreDomain == "" {
		warnings = append(warnings, "SHOPIFY_STORE_DOMAIN is not set, commerce routes will fail")
	}
	return warnings
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

// ParseIntEnv returns the integer value for an environment variable or the provided default.
func ParseIntEnv(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("config: unable to parse %s=%q as int: %v", key, value, err)
		return def
	}
	return parsed
}

// ParseBoolEnv returns the boolean value for an environment variable or the provided default.
func ParseBoolEnv(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("config: unable to parse %s=%q as bool: %v", key, value, err)
		return def
	}
	return parsed
}

// ParseDurationEnv returns the duration value for an environment variable or the provided default.
func ParseDurationEnv(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("config: unable to parse %s=%q as duration: %v", key, value, err)
		return def
	}
	return parsed
}
