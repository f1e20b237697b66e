package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"lablinc/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment.
type Config struct {
	Env  string
	Port string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBSSLMode   string

	RedisAddr     string
	RedisUser     string
	RedisPassword string

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	JWTSecret      string
	JWTTTL         time.Duration
	GoogleClientID string

	MercadoPagoAccessToken string
	PaymentMock            bool

	SMSGatewayURL string
	SMSAPIKey     string

	Timezone string
	Location *time.Location
	CacheTTL time.Duration

	CORSOrigins []string
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded, using process environment: %v", err)
	}
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func getEnvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Load reads the configuration from the environment. It does not load .env;
// call LoadEnv first for that.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                    getEnvDefault("ENV", "development"),
		Port:                   getEnvDefault("PORT", "8083"),
		DBDriver:               getEnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL:            GetEnv("DATABASE_URL"),
		DBHost:                 getEnvDefault("DB_HOST", "localhost"),
		DBUser:                 getEnvDefault("DB_USER", "postgres"),
		DBPassword:             GetEnv("DB_PASSWORD"),
		DBName:                 getEnvDefault("DB_NAME", "lablinc"),
		DBPort:                 getEnvDefault("DB_PORT", "5432"),
		DBSSLMode:              getEnvDefault("DB_SSLMODE", "disable"),
		RedisAddr:              GetEnv("REDIS_ADDR"),
		RedisUser:              GetEnv("REDIS_USER"),
		RedisPassword:          GetEnv("REDIS_PASSWORD"),
		CloudinaryURL:          GetEnv("CLOUDINARY_URL"),
		CloudinaryCloudName:    GetEnv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       GetEnv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    GetEnv("CLOUDINARY_API_SECRET"),
		JWTSecret:              GetEnv("JWT_SECRET"),
		GoogleClientID:         GetEnv("GOOGLE_CLIENT_ID"),
		MercadoPagoAccessToken: GetEnv("MERCADOPAGO_ACCESS_TOKEN"),
		SMSGatewayURL:          GetEnv("SMS_GATEWAY_URL"),
		SMSAPIKey:              GetEnv("SMS_API_KEY"),
		Timezone:               getEnvDefault("TIMEZONE", utils.DefaultTimezone),
	}
	cfg.PaymentMock = getEnvBool("PAYMENT_GATEWAY_MOCK", cfg.MercadoPagoAccessToken == "")

	ttlMinutes, err := getEnvInt("JWT_TTL_MINUTES", 24*60)
	if err != nil {
		return nil, err
	}
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute

	cacheSeconds, err := getEnvInt("CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(cacheSeconds) * time.Second

	if origins := GetEnv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	cfg.Location, err = utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "lablinc-dev-secret"
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DBDriver)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ConnectCloudinary returns nil when no credentials are configured.
func ConnectCloudinary(cfg *Config) (*cloudinary.Cloudinary, error) {
	switch {
	case cfg.CloudinaryURL != "":
		return cloudinary.NewFromURL(cfg.CloudinaryURL)
	case cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "":
		return cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	}
	return nil, nil
}
