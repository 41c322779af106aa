package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	ServerPort string
	JWTSecret  string
	JWTExpiry  time.Duration

	StorageDir       string
	StoragePublicURL string
	MaxCoverBytes    int64

	DraftsDBPath      string
	CORSOrigins       []string
	MigrationsEnabled bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	port := getEnv("SERVER_PORT", "8080")

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taskboard_user"),
		DBPassword: getEnv("DB_PASSWORD", "taskboard_pass"),
		DBName:     getEnv("DB_NAME", "taskboard_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		ServerPort: port,
		JWTSecret:  getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry:  time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		StorageDir:       getEnv("STORAGE_DIR", "./data/uploads"),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", "http://localhost:"+port+"/uploads"),
		MaxCoverBytes:    int64(getEnvInt("MAX_COVER_BYTES", 5<<20)),

		DraftsDBPath:      getEnv("DRAFTS_DB_PATH", "./data/drafts.db"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		MigrationsEnabled: getEnvBool("MIGRATIONS_ENABLED", true),
	}
}

// DSN is the postgres connection string for the configured database.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode
}

// MigrationURL is the same database in URL form for the pgx5 migrate driver.
func (c *Config) MigrationURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return b
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
