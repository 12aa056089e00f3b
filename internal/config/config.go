// Package config provides configuration management functionality.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/roadmap/internal/clientdata"
	"github.com/aristath/roadmap/internal/modules/roadmap"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Directory for the cache database (always absolute)
	NotionToken    string
	NotionDatabase string
	NotionBaseURL  string // Empty uses the public Notion API
	NotionSpace    string // Workspace path segment for project links
	Title          string
	LogLevel       string
	Port           int
	DevMode        bool
	Roadmap        *RoadmapConfig
}

// RoadmapConfig holds roadmap projection settings
type RoadmapConfig struct {
	CacheTTL        time.Duration
	RecencyWindow   time.Duration // 0 disables the end date filter
	OnlyPublic      bool
	AllowPrivate    bool   // Allow ?view=private and ?only_public=false
	RefreshSchedule string // Cron spec for cache warm-up, empty disables it
	FiscalYear      roadmap.FiscalYearConvention
	PeriodLabels    []string // Canonical period order; nil uses the built-in table
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ROADMAP_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	roadmapCfg, err := loadRoadmapConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:        absDataDir,
		NotionToken:    getEnv("NOTION_TOKEN", ""),
		NotionDatabase: getEnv("NOTION_DATABASE_ID", ""),
		NotionBaseURL:  getEnv("NOTION_BASE_URL", ""),
		NotionSpace:    getEnv("NOTION_WORKSPACE", ""),
		Title:          getEnv("ROADMAP_TITLE", "Roadmap"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnvAsInt("GO_PORT", 8001),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		Roadmap:        roadmapCfg,
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.NotionToken == "" {
		return fmt.Errorf("NOTION_TOKEN is required")
	}
	if c.NotionDatabase == "" {
		return fmt.Errorf("NOTION_DATABASE_ID is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Roadmap != nil && c.Roadmap.CacheTTL <= 0 {
		return fmt.Errorf("ROADMAP_CACHE_TTL must be positive")
	}
	return nil
}

// Filter returns the default record filter
func (c *RoadmapConfig) Filter() roadmap.FilterOptions {
	return roadmap.FilterOptions{
		OnlyPublic:    c.OnlyPublic,
		RecencyWindow: c.RecencyWindow,
	}
}

// WarmFilters returns the filters the refresh job keeps warm: the default
// one, plus the unfiltered variant when the private view is reachable.
func (c *RoadmapConfig) WarmFilters() []roadmap.FilterOptions {
	filters := []roadmap.FilterOptions{c.Filter()}
	if c.AllowPrivate && c.OnlyPublic {
		all := c.Filter()
		all.OnlyPublic = false
		filters = append(filters, all)
	}
	return filters
}

func loadRoadmapConfig() (*RoadmapConfig, error) {
	ttl, err := getEnvAsDuration("ROADMAP_CACHE_TTL", clientdata.TTLRoadmap)
	if err != nil {
		return nil, err
	}

	convention, err := roadmap.ParseFiscalYearConvention(getEnv("ROADMAP_FISCAL_CONVENTION", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ROADMAP_FISCAL_CONVENTION: %w", err)
	}

	var labels []string
	if path := getEnv("ROADMAP_PERIODS_FILE", ""); path != "" {
		labels, err = ReadPeriodLabels(path)
		if err != nil {
			return nil, err
		}
	}

	recencyDays := getEnvAsInt("ROADMAP_RECENCY_DAYS", 0)
	if recencyDays < 0 {
		recencyDays = 0
	}

	return &RoadmapConfig{
		CacheTTL:        ttl,
		RecencyWindow:   time.Duration(recencyDays) * 24 * time.Hour,
		OnlyPublic:      getEnvAsBool("ROADMAP_ONLY_PUBLIC", true),
		AllowPrivate:    getEnvAsBool("ROADMAP_PRIVATE_VIEW", false),
		RefreshSchedule: getEnv("ROADMAP_REFRESH_SCHEDULE", "0 */6 * * *"),
		FiscalYear:      convention,
		PeriodLabels:    labels,
	}, nil
}

// ReadPeriodLabels reads one period label per line, in chronological
// order. Blank lines and lines starting with # are skipped.
func ReadPeriodLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open periods file: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read periods file: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("periods file %s has no labels", path)
	}
	return labels, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
