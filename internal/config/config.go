package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr        string
	PostgresDSN     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	BlobDir         string
	MaxContentBytes int64
	RateLimitPerMin int
}

func FromEnv() Config {
	return Config{
		HTTPAddr:        envDefault("HTTP_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envInt("REDIS_DB", 0),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		BlobDir:         envDefault("BLOB_DIR", "secure_uploads"),
		MaxContentBytes: envInt64("MAX_CONTENT_LENGTH", 100<<20),
		RateLimitPerMin: envInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
