package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// Scheduler carries the scan cadences and dispatch tuning. It is loaded once
// at startup and handed to the jobs explicitly.
type Scheduler struct {
	GenerationCron string
	PublishCron    string
	TokenCron      string
	LookaheadDays  int
	ItemLimit      int
	SpreadMinutes  int
}

type Config struct {
	PostgresURI        string
	RedisURI           string
	GoogleClientID     string
	GoogleClientSecret string
	SecretKey          string
	CookieName         string
	ListenAddr         string
	LogLevel           string
	LogMode            string
	R2                 R2
	Scheduler          Scheduler
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", "127.0.0.1:6379"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		SecretKey:          getEnv("SECRET_KEY", ""),
		CookieName:         getEnv("COOKIE_NAME", "draftflow_session"),
		ListenAddr:         getEnv("LISTEN_ADDR", ":3000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogMode:            getEnv("LOG_MODE", "prod"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Scheduler: Scheduler{
			GenerationCron: getEnv("GENERATION_SCAN_CRON", "@hourly"),
			PublishCron:    getEnv("PUBLISH_SCAN_CRON", "@every 00h01m00s"),
			TokenCron:      getEnv("TOKEN_REFRESH_CRON", "@every 00h10m00s"),
			LookaheadDays:  getEnvInt("GENERATION_LOOKAHEAD_DAYS", 1),
			ItemLimit:      getEnvInt("GENERATION_ITEM_LIMIT", 100),
			SpreadMinutes:  getEnvInt("GENERATION_SPREAD_MINUTES", 55),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
