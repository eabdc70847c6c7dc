package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NewRelic    NewRelicConfig
	Kafka       KafkaConfig
	Store       StoreConfig
	Catalog     CatalogConfig
	Pricing     PricingConfig
	Cart        CartConfig
	Integration IntegrationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// KafkaConfig holds the notification topic settings. No brokers means
// notifications are delivered in-process.
type KafkaConfig struct {
	Brokers            []string
	NotificationsTopic string
	GroupID            string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string // "postgres" or "memory"
}

// CatalogConfig points at the reference data seed file.
type CatalogConfig struct {
	Path string
}

// PricingConfig holds VIP distance resolution settings.
type PricingConfig struct {
	SameCityDistanceKm float64
	FallbackDistanceKm float64 // 0 disables the estimate; unmapped routes then fail
}

// CartConfig holds cart retention settings.
type CartConfig struct {
	TTL time.Duration
}

// IntegrationConfig holds payment and messaging provider settings.
type IntegrationConfig struct {
	PaymentProvider     string // "simulated"
	PaymentTimeout      time.Duration
	PaymentLatency      time.Duration
	NotificationTimeout time.Duration
	EmailEnabled        bool
	SMSEnabled          bool
	WhatsAppEnabled     bool
	EmailFrom           string
	SMSSender           string
	WhatsAppNumber      string
	MerchantName        string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "pethotel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "pethotel-booking"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers:            getListEnv("KAFKA_BROKERS", nil),
			NotificationsTopic: getEnv("KAFKA_NOTIFICATIONS_TOPIC", "pethotel.notifications"),
			GroupID:            getEnv("KAFKA_GROUP_ID", "pethotel-notifier"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "postgres"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", "catalog.yaml"),
		},
		Pricing: PricingConfig{
			SameCityDistanceKm: getFloatEnv("PRICING_SAME_CITY_KM", 10),
			FallbackDistanceKm: getFloatEnv("PRICING_FALLBACK_KM", 0),
		},
		Cart: CartConfig{
			TTL: getDurationEnv("CART_TTL", 7*24*time.Hour),
		},
		Integration: IntegrationConfig{
			PaymentProvider:     getEnv("PAYMENT_PROVIDER", "simulated"),
			PaymentTimeout:      getDurationEnv("PAYMENT_TIMEOUT", 15*time.Second),
			PaymentLatency:      getDurationEnv("PAYMENT_LATENCY", 300*time.Millisecond),
			NotificationTimeout: getDurationEnv("NOTIFICATION_TIMEOUT", 5*time.Second),
			EmailEnabled:        getBoolEnv("NOTIFY_EMAIL_ENABLED", true),
			SMSEnabled:          getBoolEnv("NOTIFY_SMS_ENABLED", false),
			WhatsAppEnabled:     getBoolEnv("NOTIFY_WHATSAPP_ENABLED", false),
			EmailFrom:           getEnv("NOTIFY_EMAIL_FROM", "bookings@pethotel.local"),
			SMSSender:           getEnv("NOTIFY_SMS_SENDER", "PETHOTEL"),
			WhatsAppNumber:      getEnv("NOTIFY_WHATSAPP_NUMBER", ""),
			MerchantName:        getEnv("MERCHANT_NAME", "Pet Hotel & Pet Taxi"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
