package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Upload   UploadConfig
	CORS     CORSConfig
	Features FeatureFlags
	TaxRate  float64
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type UploadConfig struct {
	Dir          string
	BaseURL      string
	MaxSizeBytes int64
}

type CORSConfig struct {
	AllowOrigins []string
}

type FeatureFlags struct {
	EnableProductCaching bool
	EnableOrderEvents    bool
}

// IsDevelopment reports whether error details and stack traces may be
// exposed in responses.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load builds the configuration from the environment. A .env file in
// the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env: getEnvString("APP_ENV", "development"),
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Mongo: MongoConfig{
			URI:            getEnvString("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnvString("MONGO_DATABASE", "medikart"),
			ConnectTimeout: getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvStringSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic: getEnvString("KAFKA_ORDERS_TOPIC", "medikart.orders"),
		},
		JWT: JWTConfig{
			Secret: getEnvString("JWT_SECRET", "dev-secret-change-me"),
			Expiry: getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Upload: UploadConfig{
			Dir:          getEnvString("UPLOAD_DIR", "./uploads/prescriptions"),
			BaseURL:      getEnvString("UPLOAD_BASE_URL", "/uploads/prescriptions"),
			MaxSizeBytes: int64(getEnvInt("UPLOAD_MAX_SIZE_BYTES", 5*1024*1024)),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvStringSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:5173"}),
		},
		Features: FeatureFlags{
			EnableProductCaching: getEnvBool("ENABLE_PRODUCT_CACHING", false),
			EnableOrderEvents:    getEnvBool("ENABLE_ORDER_EVENTS", false),
		},
		TaxRate: getEnvFloat("TAX_RATE", 0.10),
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
