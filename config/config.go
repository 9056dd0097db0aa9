package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/vladbogun1/tg-shop-miniapp/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port     string
	DB       DB
	Telegram Telegram
	Security Security
	Redis    Redis
	Kafka    Kafka
}

type DB struct {
	database.Config
}

type Telegram struct {
	BotToken           string
	BotUsername        string
	DefaultAdminChatID string
	AdminUserIDs       []int64
	WebAppBaseURL      string
}

type Security struct {
	AdminPassword         string
	JWTSecret             string
	AllowUnsignedInitData bool
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		Telegram: Telegram{
			BotToken:           getEnv("TG_BOT_TOKEN", log),
			BotUsername:        getEnv("TG_BOT_USERNAME", log),
			DefaultAdminChatID: os.Getenv("TG_DEFAULT_ADMIN_CHAT_ID"),
			AdminUserIDs:       parseInt64List(os.Getenv("TG_ADMIN_USER_IDS")),
			WebAppBaseURL:      getEnv("WEBAPP_BASE_URL", log),
		},
		Security: Security{
			AdminPassword:         getEnv("ADMIN_PASSWORD", log),
			JWTSecret:             getEnv("JWT_SECRET", log),
			AllowUnsignedInitData: os.Getenv("ALLOW_UNSIGNED_INITDATA") == "true",
		},
		Redis: Redis{
			Enabled:    os.Getenv("REDIS_ADDR") != "",
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 60),
		},
		Kafka: Kafka{
			Enabled: os.Getenv("KAFKA_BROKERS") != "",
			Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			Topic:   os.Getenv("KAFKA_TOPIC_ORDERS"),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}

func parseInt64List(s string) []int64 {
	out := []int64{}
	for _, p := range splitAndTrim(s) {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
