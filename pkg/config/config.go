package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// devSecretKey signs sessions in development only; production refuses to start with it.
const devSecretKey = "library-secret-key-dev"

// Store backends understood by the wiring in cmd/api.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendREST     = "rest"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	// TrustedProxies lists proxy IPs/CIDRs whose forwarding headers set the client IP.
	// Empty trusts none, so rate limits key on the socket address.
	TrustedProxies []string

	Store     StoreConfig
	Database  DatabaseConfig
	REST      RESTConfig
	Redis     RedisConfig
	Session   SessionConfig
	CORS      CORSConfig
	Log       LogConfig
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
	Transfer  TransferConfig
}

// StoreConfig selects which persistence backend serves visitor and admin data.
type StoreConfig struct {
	Backend string
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RESTConfig points at a PostgREST-compatible document API.
type RESTConfig struct {
	URL        string
	APIKey     string
	ServiceKey string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls admin session tokens and their cookie.
type SessionConfig struct {
	Secret           string
	TTL              time.Duration
	CookieName       string
	CookieSecure     bool
	CredentialScheme string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalyticsConfig governs the analytics cache.
type AnalyticsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// RateLimitConfig throttles the public student endpoints per client IP.
type RateLimitConfig struct {
	PerMinute int
}

// TransferConfig bounds import uploads.
type TransferConfig struct {
	ImportMaxBytes int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TIMEZONE")
	cfg.TrustedProxies = splitAndTrim(v.GetString("TRUSTED_PROXIES"))

	cfg.Store = StoreConfig{Backend: strings.ToLower(v.GetString("STORE_BACKEND"))}
	switch cfg.Store.Backend {
	case StoreBackendPostgres, StoreBackendREST:
	default:
		return nil, errors.New("STORE_BACKEND must be one of postgres, rest")
	}

	cfg.Database = DatabaseConfig{
		Driver:       v.GetString("DB_DRIVER"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.REST = RESTConfig{
		URL:        strings.TrimRight(v.GetString("REST_URL"), "/"),
		APIKey:     v.GetString("REST_API_KEY"),
		ServiceKey: v.GetString("REST_SERVICE_KEY"),
		Timeout:    parseDuration(v.GetString("REST_TIMEOUT"), 10*time.Second),
	}
	if cfg.Store.Backend == StoreBackendREST && cfg.REST.URL == "" {
		return nil, errors.New("REST_URL is required when STORE_BACKEND=rest")
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Secret:           v.GetString("SECRET_KEY"),
		TTL:              parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
		CookieName:       v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure:     v.GetBool("COOKIE_SECURE"),
		CredentialScheme: strings.ToLower(v.GetString("CREDENTIAL_SCHEME")),
	}
	if cfg.Session.Secret == "" {
		return nil, errors.New("SECRET_KEY must not be empty")
	}
	if cfg.Env == EnvProduction && cfg.Session.Secret == devSecretKey {
		return nil, errors.New("SECRET_KEY must be changed from the development default in production")
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Analytics = AnalyticsConfig{
		CacheEnabled: v.GetBool("ENABLE_ANALYTICS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 2*time.Minute),
	}

	cfg.RateLimit = RateLimitConfig{PerMinute: v.GetInt("RATE_LIMIT_PER_MIN")}

	maxImport := v.GetInt64("IMPORT_MAX_BYTES")
	if maxImport <= 0 {
		maxImport = 5 * 1024 * 1024
	}
	cfg.Transfer = TransferConfig{ImportMaxBytes: maxImport}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("STORE_BACKEND", StoreBackendPostgres)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "library_visitors")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REST_URL", "")
	v.SetDefault("REST_API_KEY", "")
	v.SetDefault("REST_SERVICE_KEY", "")
	v.SetDefault("REST_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SECRET_KEY", devSecretKey)
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_COOKIE_NAME", "admin_token")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("CREDENTIAL_SCHEME", "plaintext")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_ANALYTICS_CACHE", false)
	v.SetDefault("ANALYTICS_CACHE_TTL", "2m")

	v.SetDefault("RATE_LIMIT_PER_MIN", 60)
	v.SetDefault("IMPORT_MAX_BYTES", 5*1024*1024)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
