package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Env             string
	Port            string
	MongoURI        string
	MongoDB         string
	UseTransactions bool
	JWTSecret       string
	TokenExpiry     time.Duration
	AllowedOrigins  []string
	RedisURL        string
	RateLimitRPS    int
	ReconcileCron   string
	LogLevel        string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPSender   string

	jwtSecretSet bool
}

// devJWTSecret signs tokens in development when JWT_SECRET is unset.
const devJWTSecret = "change-me"

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using process environment")
	}

	secret, secretSet := os.LookupEnv("JWT_SECRET")
	if !secretSet || secret == "" {
		logrus.Warn("JWT_SECRET is not set, signing tokens with the development secret")
		secret, secretSet = devJWTSecret, false
	}

	return &Config{
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "5000"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGODB_DB", "99acres-clone"),
		UseTransactions: getBool("MONGO_TRANSACTIONS", false),
		JWTSecret:       secret,
		TokenExpiry:     getDuration("TOKEN_EXPIRY", 30*24*time.Hour),
		AllowedOrigins:  splitList(getEnv("CLIENT_URL", "http://localhost:5173,http://localhost:5174")),
		RedisURL:        os.Getenv("REDIS_URL"),
		RateLimitRPS:    getInt("RATE_LIMIT_RPS", 20),
		ReconcileCron:   getEnv("RECONCILE_CRON", "@every 15m"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPSender:   getEnv("SMTP_SENDER", "no-reply@99acres.local"),

		jwtSecretSet: secretSet,
	}
}

// Validate rejects settings that are only acceptable in development.
func (c *Config) Validate() error {
	if c.Env != "development" && !c.jwtSecretSet {
		return errors.New("JWT_SECRET must be set when APP_ENV is " + c.Env)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
