// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Amadeus  AmadeusConfig  `mapstructure:"amadeus"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Search   SearchConfig   `mapstructure:"search"`
	Hotels   HotelsConfig   `mapstructure:"hotels"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	// Which conversation store to use: memory, redis or postgres.
	ConversationBackend string `mapstructure:"conversation_backend"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	// Indexing of completed searches is best-effort and off by default.
	ArchiveEnabled bool   `mapstructure:"archive_enabled"`
	ArchiveIndex   string `mapstructure:"archive_index"`
}

// AmadeusConfig holds settings for the flight/hotel inventory provider.
type AmadeusConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	AuthTimeout   int    `mapstructure:"auth_timeout"`   // milliseconds
	SearchTimeout int    `mapstructure:"search_timeout"` // milliseconds, per day-query
	HotelTimeout  int    `mapstructure:"hotel_timeout"`  // milliseconds
}

// LLMConfig holds settings for the language-model service.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// SearchConfig holds flight search tuning.
type SearchConfig struct {
	WindowDays      int    `mapstructure:"window_days"`
	MaxOffersPerDay int    `mapstructure:"max_offers_per_day"`
	Currency        string `mapstructure:"currency"`
	DepartureTime   string `mapstructure:"departure_time"`
	DefaultCabin    string `mapstructure:"default_cabin"`
	DefaultDuration int    `mapstructure:"default_duration"` // days, safety-valve fallback
	OfferCacheTTL   int    `mapstructure:"offer_cache_ttl"`  // seconds, redis cache only
}

// HotelsConfig holds hotel sub-pipeline tuning.
type HotelsConfig struct {
	MaxHotelIDs  int    `mapstructure:"max_hotel_ids"`
	Currency     string `mapstructure:"currency"`
	RoomQuantity int    `mapstructure:"room_quantity"`
	Adults       int    `mapstructure:"adults"`
}

// EngineConfig bounds the workflow engine.
type EngineConfig struct {
	MaxFollowups   int `mapstructure:"max_followups"`
	MaxTransitions int `mapstructure:"max_transitions"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
