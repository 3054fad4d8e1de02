// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like AMADEUS_CLIENT_ID
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored when missing
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Amadeus.ClientID == "" {
		if val := os.Getenv("AMADEUS_CLIENT_ID"); val != "" {
			cfg.Amadeus.ClientID = val
		}
	}
	if cfg.Amadeus.ClientSecret == "" {
		if val := os.Getenv("AMADEUS_CLIENT_SECRET"); val != "" {
			cfg.Amadeus.ClientSecret = val
		}
	}
	if cfg.LLM.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.LLM.APIKey = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}

	if cfg.Amadeus.BaseURL == "" {
		cfg.Amadeus.BaseURL = "https://test.api.amadeus.com"
	}
	if cfg.Amadeus.AuthTimeout == 0 {
		cfg.Amadeus.AuthTimeout = 10000
	}
	if cfg.Amadeus.SearchTimeout == 0 {
		cfg.Amadeus.SearchTimeout = 12000
	}
	if cfg.Amadeus.HotelTimeout == 0 {
		cfg.Amadeus.HotelTimeout = 10000
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30000
	}

	if cfg.Search.WindowDays == 0 {
		cfg.Search.WindowDays = 3
	}
	if cfg.Search.MaxOffersPerDay == 0 {
		cfg.Search.MaxOffersPerDay = 5
	}
	if cfg.Search.Currency == "" {
		cfg.Search.Currency = "EGP"
	}
	if cfg.Search.DepartureTime == "" {
		cfg.Search.DepartureTime = "10:00:00"
	}
	if cfg.Search.DefaultCabin == "" {
		cfg.Search.DefaultCabin = "ECONOMY"
	}
	if cfg.Search.DefaultDuration == 0 {
		cfg.Search.DefaultDuration = 7
	}
	if cfg.Search.OfferCacheTTL == 0 {
		cfg.Search.OfferCacheTTL = 3600
	}

	if cfg.Hotels.MaxHotelIDs == 0 {
		cfg.Hotels.MaxHotelIDs = 20
	}
	if cfg.Hotels.Currency == "" {
		cfg.Hotels.Currency = "EGP"
	}
	if cfg.Hotels.RoomQuantity == 0 {
		cfg.Hotels.RoomQuantity = 1
	}
	if cfg.Hotels.Adults == 0 {
		cfg.Hotels.Adults = 1
	}

	if cfg.Engine.MaxFollowups == 0 {
		cfg.Engine.MaxFollowups = 3
	}
	if cfg.Engine.MaxTransitions == 0 {
		cfg.Engine.MaxTransitions = 25
	}

	if cfg.Database.ConversationBackend == "" {
		cfg.Database.ConversationBackend = "memory"
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.ArchiveIndex == "" {
		cfg.Database.Elasticsearch.ArchiveIndex = "flight-searches"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Amadeus.ClientID == "" {
		return fmt.Errorf("amadeus.client_id is required")
	}
	if cfg.Amadeus.ClientSecret == "" {
		return fmt.Errorf("amadeus.client_secret is required")
	}

	switch cfg.Database.ConversationBackend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis conversation backend")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for the postgres conversation backend")
		}
	default:
		return fmt.Errorf("unknown conversation backend %q", cfg.Database.ConversationBackend)
	}

	if cfg.Search.WindowDays < 1 {
		return fmt.Errorf("search.window_days must be at least 1")
	}
	if cfg.Search.MaxOffersPerDay > 5 {
		return fmt.Errorf("search.max_offers_per_day must be at most 5")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
