package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// JWTConfig defines the issuer/secret pair used to sign and verify staff
// and manager tokens.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                    string
	MongoURI                string
	MongoDatabase           string
	LocationCollection      string
	EmployeeCollection      string
	ShiftCollection         string
	TransactionCollection   string
	MenuItemCollection      string
	ManagerAccessCollection string
	Timeout                 time.Duration
	QueryTimeout            time.Duration
	Debounce                time.Duration
	Timezone                string
	TokenTTL                time.Duration
	ServerLog               *log.Logger
	JWT                     JWTConfig
	JWTAudience             string
	AllowedOrigins          []string
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	queryTimeout := 5 * time.Second
	if v := strings.TrimSpace(os.Getenv("QUERY_TIMEOUT")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			queryTimeout = parsed
		}
	}

	debounce := 300 * time.Millisecond
	if v := strings.TrimSpace(os.Getenv("LEADERBOARD_DEBOUNCE")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			debounce = parsed
		}
	}

	tokenTTL := 14 * time.Hour
	if v := strings.TrimSpace(os.Getenv("AUTH_TOKEN_TTL")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			tokenTTL = parsed
		}
	}

	secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))
	if secret == "" {
		log.Fatal("AUTH_JWT_SECRET must be configured")
	}

	cfg := Config{
		Addr:                    envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:                envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:           envOrDefault("MONGO_DB", "upsell-board"),
		LocationCollection:      envOrDefault("LOCATION_COLLECTION", "locations"),
		EmployeeCollection:      envOrDefault("EMPLOYEE_COLLECTION", "employees"),
		ShiftCollection:         envOrDefault("SHIFT_COLLECTION", "shifts"),
		TransactionCollection:   envOrDefault("TRANSACTION_COLLECTION", "upsells"),
		MenuItemCollection:      envOrDefault("MENU_ITEM_COLLECTION", "menu_items"),
		ManagerAccessCollection: envOrDefault("MANAGER_ACCESS_COLLECTION", "manager_access"),
		Timeout:                 timeout,
		QueryTimeout:            queryTimeout,
		Debounce:                debounce,
		Timezone:                envOrDefault("TIMEZONE", "Europe/Stockholm"),
		TokenTTL:                tokenTTL,
		ServerLog:               log.New(os.Stdout, "[upsell-api] ", log.LstdFlags|log.Lshortfile),
		JWT: JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "upsell-board-api"),
			Secret: []byte(secret),
		},
		JWTAudience:    strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		AllowedOrigins: parseList("API_ALLOWED_ORIGINS", []string{"*"}),
	}

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
