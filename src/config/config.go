package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-level option the server understands.
type Config struct {
	Port        string
	Env         string
	FrontendURL string

	MongoURI            string
	MongoDatabase       string
	MongoConnectTimeout time.Duration
	MongoSocketTimeout  time.Duration

	SQLitePath    string
	RelationalDSN string

	UploadsDir    string
	ExportsDir    string
	MaxPhotoBytes int64

	RequestTimeout time.Duration

	JWTSecret         string
	JWTTTL            time.Duration
	GeneratedSecret   bool
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	RedisURI string

	StrictChildrenJSON bool

	SSLCertPath string
	SSLKeyPath  string

	LogLevel string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:          GetEnv("PORT", "3000"),
		Env:           strings.ToLower(GetEnv("APP_ENV", GetEnv("NODE_ENV", "development"))),
		FrontendURL:   GetEnv("FRONTEND_URL", "http://localhost:5173"),
		MongoURI:      GetEnv("MONGO_URI", GetEnv("MONGODB_URI", "")),
		MongoDatabase: GetEnv("MONGO_DB", "welfare_committee"),
		SQLitePath:    GetEnv("SQLITE_PATH", "data/welfare_committee.db"),
		RelationalDSN: GetEnv("RELATIONAL_DSN", ""),
		UploadsDir:    GetEnv("UPLOADS_DIR", "uploads"),
		ExportsDir:    GetEnv("EXPORTS_DIR", ""),

		JWTSecret:         GetEnv("JWT_SECRET", ""),
		AdminUsername:     GetEnv("ADMIN_USERNAME", ""),
		AdminPassword:     GetEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash: GetEnv("ADMIN_PASSWORD_HASH", ""),
		RedisURI:          GetEnv("REDIS_URI", ""),
		SSLCertPath:       GetEnv("SSL_CERT_PATH", ""),
		SSLKeyPath:        GetEnv("SSL_KEY_PATH", ""),
		LogLevel:          strings.ToLower(GetEnv("LOG_LEVEL", "info")),
	}

	cfg.MongoConnectTimeout = durationEnv("MONGO_CONNECT_TIMEOUT", 15*time.Second, &errs)
	cfg.MongoSocketTimeout = durationEnv("MONGO_SOCKET_TIMEOUT", 45*time.Second, &errs)
	cfg.RequestTimeout = durationEnv("REQUEST_TIMEOUT", 45*time.Second, &errs)
	cfg.JWTTTL = durationEnv("JWT_TTL", 8*time.Hour, &errs)
	cfg.MaxPhotoBytes = int64Env("MAX_PHOTO_BYTES", 5*1024*1024, &errs)
	cfg.StrictChildrenJSON = boolEnv("STRICT_CHILDREN_JSON", false, &errs)

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", cfg.Port))
	}
	if (cfg.SSLCertPath == "") != (cfg.SSLKeyPath == "") {
		errs = append(errs, errors.New("SSL_CERT_PATH and SSL_KEY_PATH must be set together"))
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		} else {
			cfg.JWTSecret = randomSecret()
			cfg.GeneratedSecret = true
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the process runs with production behaviour
// (plain HTTP behind a TLS-terminating proxy, HTTPS redirects).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// TLSEnabled reports whether the server should terminate TLS itself.
func (c *Config) TLSEnabled() bool {
	return !c.IsProduction() && c.SSLCertPath != "" && c.SSLKeyPath != ""
}

// BodyLimit is the largest accepted request body: one photo plus form fields.
func (c *Config) BodyLimit() int {
	return int(c.MaxPhotoBytes) + 1024*1024
}

func GetEnv(key string, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration, errs *[]error) time.Duration {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s must be a positive duration, got %q", key, raw))
		return def
	}
	return d
}

func int64Env(key string, def int64, errs *[]error) int64 {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s must be a positive integer, got %q", key, raw))
		return def
	}
	return n
}

func boolEnv(key string, def bool, errs *[]error) bool {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a boolean, got %q", key, raw))
		return def
	}
	return b
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("config: cannot read random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
