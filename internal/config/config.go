package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBUrl    string
	HTTPAddr string

	StorageRoot   string
	InputBucket   string
	WebsiteBucket string
	ScheduleKey   string

	EnrichmentFile string
	ScheduleTZ     string

	// Orders fetch job
	OrdersURL        string
	FetchSchedule    string
	FetchWindowStart string
	FetchWindowEnd   string

	WatchInput      bool
	PublishBrotli   bool
	MaxParallelRuns int

	// SFTP mirror of the website bucket
	SFTPHost string
	SFTPPort int
	SFTPUser string
	SFTPPass string
	SFTPDir  string

	LogLevel string
	LogDev   bool
}

func Load() *Config {
	return &Config{
		DBUrl:    getEnv("DATABASE_URL", ""),
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),

		StorageRoot:   getEnv("STORAGE_ROOT", "./data"),
		InputBucket:   getEnv("INPUT_BUCKET", "input"),
		WebsiteBucket: getEnv("WEBSITE_BUCKET", "website"),
		ScheduleKey:   getEnv("SCHEDULE_KEY", "data/schedule.json"),

		EnrichmentFile: getEnv("ENRICHMENT_FILE", ""),
		ScheduleTZ:     getEnv("SCHEDULE_TZ", "Local"),

		OrdersURL:        getEnv("ORDERS_URL", ""),
		FetchSchedule:    getEnv("FETCH_SCHEDULE", "@every 5m"),
		FetchWindowStart: getEnv("FETCH_WINDOW_START", "07:00"),
		FetchWindowEnd:   getEnv("FETCH_WINDOW_END", "18:00"),

		WatchInput:      getEnvBool("WATCH_INPUT", true),
		PublishBrotli:   getEnvBool("PUBLISH_BROTLI", true),
		MaxParallelRuns: getEnvInt("MAX_PARALLEL_RUNS", 4),

		SFTPHost: getEnv("SFTP_HOST", ""),
		SFTPPort: getEnvInt("SFTP_PORT", 22),
		SFTPUser: getEnv("SFTP_USER", ""),
		SFTPPass: getEnv("SFTP_PASS", ""),
		SFTPDir:  getEnv("SFTP_DIR", "/"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDev:   getEnvBool("LOG_DEV", false),
	}
}

// Location resolves ScheduleTZ. Unknown zones fall back to time.Local.
func (c *Config) Location() *time.Location {
	switch c.ScheduleTZ {
	case "", "Local":
		return time.Local
	}
	loc, err := time.LoadLocation(c.ScheduleTZ)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}
