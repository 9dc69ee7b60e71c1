package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	App         AppConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	ObjectStore ObjectStoreConfig
	JWT         JWTConfig
	Relations   RelationsConfig
	Resolver    ResolverConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string

	// QueryTimeout bounds how long an HTTP handler waits for the first
	// result of a live query.
	QueryTimeout time.Duration
}

type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured. Without one the
// relationship lists live in process memory.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

type ObjectStoreConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
}

// JWTConfig verifies access tokens minted by the identity service. The
// expiry only applies to tokens issued by cmd/devtoken.
type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
	Issuer          string
}

type RelationsConfig struct {
	RecentCap       int
	MirrorWorkers   int
	MirrorBuffer    int
	MirrorTimeout   time.Duration
	MirrorRateLimit int
}

type ResolverConfig struct {
	Timeout time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")
var errInvalidEnv = errors.New("invalid environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optBool := func(key string, def bool) bool {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:      req("APP_NAME"),
		Environment:  req("APP_ENV"),
		HTTPPort:     req("HTTP_PORT"),
		QueryTimeout: optDuration("HTTP_QUERY_TIMEOUT", 10*time.Second),
	}

	cfg.Store = StoreConfig{
		Driver: strings.ToLower(optDefault("STORE_DRIVER", StoreDriverMemory)),
	}

	dbOpt := opt
	if cfg.Store.Driver == StoreDriverPostgres {
		dbOpt = req
	}
	cfg.Database = DatabaseConfig{
		DBHost:     dbOpt("DB_HOST"),
		DBPort:     dbOpt("DB_PORT"),
		DBName:     dbOpt("DB_NAME"),
		DBUser:     dbOpt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  optDefault("DB_SSL_MODE", "disable"),

		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", 0),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       optInt("REDIS_DB", 0),
	}

	cfg.ObjectStore = ObjectStoreConfig{
		Endpoint:      opt("OBJECT_STORE_ENDPOINT"),
		AccessKey:     opt("OBJECT_STORE_ACCESS_KEY"),
		SecretKey:     opt("OBJECT_STORE_SECRET_KEY"),
		Bucket:        optDefault("OBJECT_STORE_BUCKET", "skill-swap"),
		UseSSL:        optBool("OBJECT_STORE_USE_SSL", false),
		PresignExpiry: optDuration("OBJECT_STORE_PRESIGN_EXPIRY", time.Hour),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: optDuration("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		Issuer:          opt("JWT_ISSUER"),
	}

	cfg.Relations = RelationsConfig{
		RecentCap:       optInt("RECENT_CONTACTS_CAP", 20),
		MirrorWorkers:   optInt("MIRROR_WORKERS", 4),
		MirrorBuffer:    optInt("MIRROR_BUFFER", 1024),
		MirrorTimeout:   optDuration("MIRROR_TIMEOUT", 5*time.Second),
		MirrorRateLimit: optInt("MIRROR_RATE_LIMIT", 0),
	}

	cfg.Resolver = ResolverConfig{
		Timeout: optDuration("RESOLVER_TIMEOUT", 10*time.Second),
	}

	switch cfg.Store.Driver {
	case StoreDriverMemory, StoreDriverPostgres:
	default:
		invalid = append(invalid, "STORE_DRIVER")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}
