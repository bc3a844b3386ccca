package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database         DatabaseConfig         `json:"database"`
	JWTSecret        string                 `json:"jwt_secret"`
	Port             int                    `json:"port"`
	JWTTTLHours      int                    `json:"jwt_ttl_hours"`
	CORSAllowlist    []string               `json:"cors_allowlist"`
	LogConfig        logger.LogConfig       `json:"log_config"`
	FileStore        FileStoreConfig        `json:"file_store"`
	Share            ShareConfig            `json:"share"`
	Housekeeping     HousekeepingConfig     `json:"housekeeping"`
	DisplayNameCache DisplayNameCacheConfig `json:"display_name_cache"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ShareConfig struct {
	BaseURL           string `json:"base_url"`
	MaxLifetimeDays   int    `json:"max_lifetime_days"`
	LinkTTLSeconds    int64  `json:"link_ttl_seconds"`
	PublicRateLimitMS int64  `json:"public_rate_limit_ms"`
}

type HousekeepingConfig struct {
	CollectionPurgeCron     string `json:"collection_purge_cron"`
	CollectionRetentionDays int    `json:"collection_retention_days"`
	JobTimeoutSeconds       int64  `json:"job_timeout_seconds"`
}

type DisplayNameCacheConfig struct {
	Size       int   `json:"size"`
	TTLSeconds int64 `json:"ttl_seconds"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.FileStore.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("file_store.type must be local or s3")
	}
	if cfg.Share.MaxLifetimeDays <= 0 {
		cfg.Share.MaxLifetimeDays = 3650
	}
	if cfg.Share.LinkTTLSeconds <= 0 {
		cfg.Share.LinkTTLSeconds = 900
	}
	if cfg.Share.PublicRateLimitMS < 0 {
		return fmt.Errorf("share.public_rate_limit_ms must not be negative")
	}
	if cfg.Share.PublicRateLimitMS == 0 {
		cfg.Share.PublicRateLimitMS = 200
	}
	if cfg.Housekeeping.CollectionPurgeCron == "" {
		cfg.Housekeeping.CollectionPurgeCron = "30 3 * * *"
	}
	if cfg.Housekeeping.CollectionRetentionDays <= 0 {
		cfg.Housekeeping.CollectionRetentionDays = 30
	}
	if cfg.Housekeeping.JobTimeoutSeconds <= 0 {
		cfg.Housekeeping.JobTimeoutSeconds = 1800
	}
	if cfg.DisplayNameCache.Size <= 0 {
		cfg.DisplayNameCache.Size = 1024
	}
	if cfg.DisplayNameCache.TTLSeconds <= 0 {
		cfg.DisplayNameCache.TTLSeconds = 300
	}
	return nil
}
