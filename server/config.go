package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates the service configuration.
type Config struct {
	Addr        string
	DataDir     string
	CatalogPath string
	SnapshotDir string

	Fetch FetchConfig
	S3    S3Config
}

// FetchConfig configures the remote badge API client.
type FetchConfig struct {
	BaseURL     string
	RateLimit   float64
	Parallelism int
}

// S3Config configures optional snapshot upload. Enabled when a bucket
// is set.
type S3Config struct {
	Bucket string
	Prefix string
	Region string
}

// Enabled reports whether snapshot upload is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	addr, err := loadAddr()
	if err != nil {
		return nil, err
	}

	rateLimit, err := parseFloatEnv("FETCH_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	parallelism, err := parseIntEnv("FETCH_PARALLELISM", 4)
	if err != nil {
		return nil, err
	}

	return &Config{
		Addr:        addr,
		DataDir:     getEnvOrDefault("DATA_DIR", ":memory:"),
		CatalogPath: strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		SnapshotDir: getEnvOrDefault("SNAPSHOT_DIR", "./snapshots"),
		Fetch: FetchConfig{
			BaseURL:     getEnvOrDefault("FETCH_BASE_URL", "https://badges.roblox.com"),
			RateLimit:   rateLimit,
			Parallelism: parallelism,
		},
		S3: S3Config{
			Bucket: strings.TrimSpace(os.Getenv("S3_BUCKET")),
			Prefix: strings.TrimSpace(os.Getenv("S3_PREFIX")),
			Region: strings.TrimSpace(os.Getenv("AWS_REGION")),
		},
	}, nil
}

func loadAddr() (string, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	// Accept ":8080" and "127.0.0.1:8080" forms directly.
	if strings.Contains(port, ":") {
		return port, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid PORT value %q: %w", port, err)
	}

	return ":" + port, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
