package config

import (
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // hours
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Receipt struct {
		Prefix  string
		HMACKey string // key for receipt number signatures
	}
	Scheduler struct {
		ReminderIntervalHours int
	}
}

// NewConfig creates a new configuration instance from the environment
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Server settings
	v.SetDefault("SERVER_PORT", 8080)

	// Database settings
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "schoolpay_db")

	// JWT settings
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	// SMTP settings
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "your-email@gmail.com")
	v.SetDefault("SMTP_PASSWORD", "your-app-password")
	v.SetDefault("SMTP_FROM", "your-email@gmail.com")

	// Receipt settings
	v.SetDefault("RECEIPT_PREFIX", "RCPT")
	v.SetDefault("RECEIPT_HMAC_KEY", "your-receipt-hmac-key-here")

	// Scheduler settings
	v.SetDefault("REMINDER_INTERVAL_HOURS", 24)

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("SERVER_PORT")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.Receipt.Prefix = v.GetString("RECEIPT_PREFIX")
	cfg.Receipt.HMACKey = v.GetString("RECEIPT_HMAC_KEY")

	cfg.Scheduler.ReminderIntervalHours = v.GetInt("REMINDER_INTERVAL_HOURS")

	return cfg, nil
}
