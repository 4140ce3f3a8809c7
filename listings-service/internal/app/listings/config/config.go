package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Geocoder GeocoderConfig
	Sweep    SweepConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

// PostgresConfig - база провайдера идентификации, откуда читаются профили пользователей
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	ProfileTTL time.Duration // Время жизни профиля пользователя в кеше
}

type KafkaConfig struct {
	Brokers []string
	Topic   string // Топик для событий LISTING_* и REVIEW_*
}

type JWTConfig struct {
	Secret string // Должен совпадать с секретом провайдера идентификации
}

type GeocoderConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type SweepConfig struct {
	Schedule string // cron выражение сверки отзывов без объявления
}

// Load читает конфигурацию из окружения
// Файл .env подхватывается, если он есть; переменные окружения имеют приоритет
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "wanderlust"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnv("POSTGRES_DB", "auth_service"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			ProfileTTL: time.Duration(getEnvInt("REDIS_PROFILE_TTL_SECONDS", 600)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "listing_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Geocoder: GeocoderConfig{
			URL:     getEnv("GEOCODER_URL", "https://api.opencagedata.com/geocode/v1/json"),
			APIKey:  getEnv("GEOCODER_API_KEY", ""),
			Timeout: time.Duration(getEnvInt("GEOCODER_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Sweep: SweepConfig{
			Schedule: getEnv("SWEEP_SCHEDULE", "*/15 * * * *"),
		},
	}

	if cfg.Geocoder.Timeout <= 0 {
		return nil, fmt.Errorf("GEOCODER_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// DSN строка подключения для pgx
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
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

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
