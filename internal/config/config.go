package config

import (
	"os"
)

type Config struct {
	ServerAddress string

	MongoURI    string
	MongoDBName string

	SessionSecret string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleDiscoveryURL string
	AllowedDomain      string

	StaticDir string
	ChartPath string

	SendGridAPIKey  string
	NotifyFromEmail string
	NotifyToEmail   string
}

func Load() *Config {
	return &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),

		MongoURI:    getEnv("MONGO_URI", ""),
		MongoDBName: getEnv("MONGO_DB_NAME", "sleepsite"),

		SessionSecret: getEnv("SESSION_SECRET", "dev-only-secret-change-in-production"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleDiscoveryURL: getEnv("GOOGLE_DISCOVERY_URL", "https://accounts.google.com/.well-known/openid-configuration"),
		AllowedDomain:      getEnv("ALLOWED_DOMAIN", "ousd.org"),

		StaticDir: getEnv("STATIC_DIR", "./static"),
		ChartPath: getEnv("CHART_PATH", "./static/graphs/sleep.png"),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		NotifyFromEmail: getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyToEmail:   getEnv("NOTIFY_TO_EMAIL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
