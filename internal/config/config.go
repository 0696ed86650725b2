package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string

	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioListingBucket string
	MinioProfileBucket string
	MinioUseSSL        bool
	MinioPublicBase    string

	GeocoderBase string
	GeocoderKey  string

	UploadWorkers int
	CacheTTL      time.Duration
}

func Load() *Config {
	return &Config{
		AppEnv:        getenv("APP_ENV", "prod"),
		Port:          getenv("PORT", "8080"),
		PostgresDSN:   getenv("POSTGRES_DSN", ""),
		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		MinioEndpoint:      getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinioListingBucket: getenv("MINIO_LISTING_BUCKET", "listing-img"),
		MinioProfileBucket: getenv("MINIO_PROFILE_BUCKET", "profile-img"),
		MinioUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinioPublicBase:    getenv("MINIO_PUBLIC_BASE", ""),

		GeocoderBase: getenv("GEOCODER_BASE_URL", "https://api.geoapify.com"),
		GeocoderKey:  getenv("GEOCODER_API_KEY", ""),

		UploadWorkers: atoi("UPLOAD_WORKERS", 4),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func atoi(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
