package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	TelegramBotToken string
	JWTSecret        string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	CloudinaryConfig CloudinaryConfig
	StoreDriver      string // memory | postgres
	RedisURL         string // пустая строка - локальная шина изменений
	HTTPAddr         string
	RealtimeAddr     string
	GeolocationURL   string
	AdminUserIDs     []string
	LogLevel         string
	AppEnv           string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	UploadFolder string
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}

	return cfg
}

// FromEnv собирает конфигурацию из переменных окружения без проверки
func FromEnv() *Config {
	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "skillswap_user"),
		Password: getEnv("PGPASSWORD", "skillswap_pass"),
		Name:     getEnv("PGDATABASE", "skillswap"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cloudinaryConfig := CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "skillswap/avatars"),
	}

	return &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		DatabaseURL:      dbURL,
		DatabaseConfig:   dbConfig,
		CloudinaryConfig: cloudinaryConfig,
		StoreDriver:      getEnv("STORE_DRIVER", "postgres"),
		RedisURL:         getEnv("REDIS_URL", ""),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		RealtimeAddr:     getEnv("REALTIME_ADDR", ":8081"),
		GeolocationURL:   getEnv("GEOLOCATION_URL", "https://ipapi.co"),
		AdminUserIDs:     splitList(getEnv("ADMIN_USER_IDS", "")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AppEnv:           getEnv("APP_ENV", "production"), // По умолчанию production
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("не задан JWT_SECRET")
	}
	if c.StoreDriver != "memory" && c.StoreDriver != "postgres" {
		return fmt.Errorf("неизвестный STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// IsAdmin сообщает, входит ли пользователь в список администраторов
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
