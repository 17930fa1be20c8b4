package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	MetricsAddr string

	DBDriver string // mysql|memory
	MySQLDSN string

	RedisAddr string // empty selects the in-process cache
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	StorageDriver string // local|minio
	StorageRoot   string
	PublicPrefix  string
	MinioEndpoint string
	MinioAccess   string
	MinioSecret   string
	MinioBucket   string
	MinioSSL      bool

	DefaultPerPage int
	MaxPerPage     int
	WriteRPS       int
	RequestTimeout time.Duration
	MaxUploadBytes int64

	SeedWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric config value")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		DBDriver:       strings.ToLower(env("DB_DRIVER", "mysql")),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		StorageDriver:  strings.ToLower(env("STORAGE_DRIVER", "local")),
		StorageRoot:    env("STORAGE_ROOT", "./storage/app/public"),
		PublicPrefix:   env("STORAGE_PUBLIC_PREFIX", "/storage"),
		MinioEndpoint:  env("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccess:    env("MINIO_ACCESS_KEY", ""),
		MinioSecret:    env("MINIO_SECRET_KEY", ""),
		MinioBucket:    env("MINIO_BUCKET", "hotels"),
		MinioSSL:       env("MINIO_USE_SSL", "false") == "true",
		DefaultPerPage: atoi("DEFAULT_PER_PAGE", 10),
		MaxPerPage:     atoi("MAX_PER_PAGE", 100),
		WriteRPS:       atoi("WRITE_RPS", 10),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxUploadBytes: int64(atoi("MAX_UPLOAD_MB", 110)) << 20,
		SeedWorkers:    atoi("SEED_WORKERS", 4),
	}
	if c.StorageDriver == "minio" && (c.MinioAccess == "" || c.MinioSecret == "") {
		log.Warn().Msg("MINIO_ACCESS_KEY or MINIO_SECRET_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
