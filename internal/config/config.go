// Package config loads service configuration from the environment and an optional
// .env / config file, and holds the trust policy constants.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the intake service.
type Config struct {
	AppEnv string
	Port   string

	// PostgreSQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis (staff feed fan-out)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ (downstream event bus). Empty URL disables the publisher.
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Notifications
	TelegramBotToken  string
	SendGridAPIKey    string
	SendGridFromName  string
	SendGridFromEmail string
	LocalesDir        string

	// HTTP
	JWTSecret       string
	RequestTimeout  time.Duration
	RateLimitPerSec float64
	RateLimitBurst  int
	AllowedOrigins  []string

	LogLevel  string
	LogFormat string

	// DisableAdmissionGating switches admission to the unrestricted policy.
	// Only honoured outside production; used for synthetic load generation.
	DisableAdmissionGating bool
}

// Load reads .env (if present), then environment variables and an optional config file.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		AppEnv: v.GetString("app_env"),
		Port:   v.GetString("port"),

		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		AMQPURL:        v.GetString("amqp_url"),
		AMQPExchange:   v.GetString("amqp_exchange"),
		AMQPRoutingKey: v.GetString("amqp_routing_key"),

		TelegramBotToken:  v.GetString("telegram_bot_token"),
		SendGridAPIKey:    v.GetString("sendgrid_api_key"),
		SendGridFromName:  v.GetString("sendgrid_from_name"),
		SendGridFromEmail: v.GetString("sendgrid_from_email"),
		LocalesDir:        v.GetString("locales_dir"),

		JWTSecret:       v.GetString("jwt_secret"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		RateLimitPerSec: v.GetFloat64("rate_limit_per_sec"),
		RateLimitBurst:  v.GetInt("rate_limit_burst"),
		AllowedOrigins:  splitList(v.GetString("allowed_origins")),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),

		DisableAdmissionGating: v.GetBool("disable_admission_gating"),
	}

	if cfg.DisableAdmissionGating && cfg.IsProduction() {
		log.Warn("DISABLE_ADMISSION_GATING ignored in production")
		cfg.DisableAdmissionGating = false
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "user")
	v.SetDefault("db_password", "password")
	v.SetDefault("db_name", "cityvoicedb")
	v.SetDefault("redis_addr", "localhost:6380")
	v.SetDefault("redis_db", 0)
	v.SetDefault("amqp_exchange", "cityvoice")
	v.SetDefault("amqp_routing_key", "report.status")
	v.SetDefault("sendgrid_from_name", "CityVoice")
	v.SetDefault("sendgrid_from_email", "no-reply@cityvoice.local")
	v.SetDefault("locales_dir", "internal/localization/locales")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("rate_limit_per_sec", 20.0)
	v.SetDefault("rate_limit_burst", 40)
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("disable_admission_gating", false)
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// PostgresDSN builds the gorm/pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
