package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payments.
	StripeKey string `mapstructure:"STRIPE_KEY"`
	Currency  string `mapstructure:"CURRENCY"`

	// Push notifications. Empty path disables FCM delivery.
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`

	// Booking workflow.
	BookingLockTTLSeconds int    `mapstructure:"BOOKING_LOCK_TTL_SECONDS"`
	AdminChannel          string `mapstructure:"ADMIN_CHANNEL"`
	NotificationMaxRetry  int    `mapstructure:"NOTIFICATION_MAX_RETRY"`

	// Sweep over notifications whose delivery job never completed.
	NotificationRedriveCron         string `mapstructure:"NOTIFICATION_REDRIVE_CRON"`
	NotificationRedriveAfterMinutes int    `mapstructure:"NOTIFICATION_REDRIVE_AFTER_MINUTES"`
	NotificationRedriveBatch        int    `mapstructure:"NOTIFICATION_REDRIVE_BATCH"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "pcohire")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("CURRENCY", "gbp")
	viper.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	viper.SetDefault("BOOKING_LOCK_TTL_SECONDS", 15)
	viper.SetDefault("ADMIN_CHANNEL", "admin")
	viper.SetDefault("NOTIFICATION_MAX_RETRY", 5)
	viper.SetDefault("NOTIFICATION_REDRIVE_CRON", "@every 5m")
	viper.SetDefault("NOTIFICATION_REDRIVE_AFTER_MINUTES", 30)
	viper.SetDefault("NOTIFICATION_REDRIVE_BATCH", 100)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// BookingLockTTL is the lifetime of the per-booking mutation lock.
func BookingLockTTL() time.Duration {
	if AppConfig.BookingLockTTLSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(AppConfig.BookingLockTTLSeconds) * time.Second
}

// NotificationRedriveAfter is how old an undelivered notification must be before
// the sweep queues it again. It outlasts the delivery job's own retries.
func NotificationRedriveAfter() time.Duration {
	if AppConfig.NotificationRedriveAfterMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(AppConfig.NotificationRedriveAfterMinutes) * time.Minute
}
