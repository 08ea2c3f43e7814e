package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTPasswordReset          string
	Database                  DatabaseConfig
	Mailer                    MailerConfig
	Log                       LogConfig
	Clinic                    ClinicConfig
	Jobs                      JobsConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	PasswordResetTokenExpiry  int
	AppURL                    string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// MailerConfig holds SMTP settings. An empty Host disables delivery and
// notifications are only logged.
type MailerConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	DefaultFrom string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// ClinicConfig describes the clinic printed on documents and the time zone
// weekly availability windows are evaluated in.
type ClinicConfig struct {
	Name       string
	Address    string
	Phone      string
	AdminEmail string
	Location   *time.Location
}

// JobsConfig holds cron schedules for background jobs
type JobsConfig struct {
	Enabled      bool
	LowStockCron string
	ReminderCron string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "smart_clinic"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	mailerConfig := MailerConfig{
		Host:        getEnv("SMTP_HOST", ""),
		Port:        smtpPort,
		Username:    getEnv("SMTP_USER", ""),
		Password:    getEnv("SMTP_PASS", ""),
		DefaultFrom: getEnv("MAILER_DEFAULT_FROM", "no-reply@smartclinic.local"),
	}

	loc, err := time.LoadLocation(getEnv("CLINIC_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE: %w", err)
	}
	clinicConfig := ClinicConfig{
		Name:       getEnv("CLINIC_NAME", "Smart Clinic"),
		Address:    getEnv("CLINIC_ADDRESS", "123 Medical Street, City"),
		Phone:      getEnv("CLINIC_PHONE", "+92-300-1234567"),
		AdminEmail: getEnv("ADMIN_EMAIL", ""),
		Location:   loc,
	}

	jobsEnabled, err := strconv.ParseBool(getEnv("JOBS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOBS_ENABLED: %w", err)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	passwordResetTokenExpiry, err := strconv.Atoi(getEnv("PASSWORD_RESET_TOKEN_EXPIRY_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid PASSWORD_RESET_TOKEN_EXPIRY_MINUTES: %w", err)
	}

	return &Config{
		Port:             getEnv("PORT", "3001"),
		Origin:           getEnv("ORIGIN", "http://localhost:4200"),
		Environment:      getEnv("NODE_ENV", "development"),
		JWTSecret:        getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		JWTPasswordReset: getEnv("JWT_PASSWORD_SECRET", "default_password_reset_secret"),
		Database:         dbConfig,
		Mailer:           mailerConfig,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Clinic: clinicConfig,
		Jobs: JobsConfig{
			Enabled:      jobsEnabled,
			LowStockCron: getEnv("LOW_STOCK_CRON", "0 8 * * *"),
			ReminderCron: getEnv("REMINDER_CRON", "0 18 * * *"),
		},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		PasswordResetTokenExpiry:  passwordResetTokenExpiry,
		AppURL:                    getEnv("APP_URL", "http://localhost:4200"),
	}, nil
}

// IsDevelopment reports whether the server runs with NODE_ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
