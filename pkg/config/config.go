package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPAddr string

	// Venue endpoints
	PolymarketWSURL   string
	PolymarketRESTURL string
	KalshiWSURL       string
	KalshiWSPath      string
	KalshiRESTURL     string

	// Kalshi credentials. Both must be present for the Kalshi stream to run;
	// otherwise the venue is disabled and pairs depending on it are skipped.
	KalshiKeyID   string
	KalshiKeyPath string

	// Market pairing
	TitleSimThreshold float64
	TimeWindow        time.Duration
	PMChunkSize       int

	// WebSocket
	WSDialTimeout        time.Duration
	WSPingInterval       time.Duration
	WSReadDeadline       time.Duration
	WSReconnectBaseDelay time.Duration
	WSReconnectMaxDelay  time.Duration
	WSReconnectMult      float64

	// Arbitrage engine
	EdgeMinRORPct    float64
	EngineTick       time.Duration
	MaxOpportunities int
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPAddr: getEnvOrDefault("HTTP_ADDR", ":8080"),

		PolymarketWSURL:   getEnvOrDefault("POLYMARKET_WS_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/"),
		PolymarketRESTURL: getEnvOrDefault("POLYMARKET_REST_URL", "https://clob.polymarket.com"),
		KalshiWSURL:       getEnvOrDefault("KALSHI_WS_URL", "wss://api.elections.kalshi.com/trade-api/ws/v2"),
		KalshiWSPath:      getEnvOrDefault("KALSHI_WS_PATH", "/trade-api/ws/v2"),
		KalshiRESTURL:     getEnvOrDefault("KALSHI_REST_URL", "https://api.elections.kalshi.com/trade-api/v2"),

		KalshiKeyID:   os.Getenv("KALSHI_KEY_ID"),
		KalshiKeyPath: os.Getenv("KALSHI_PRIVATE_KEY_PATH"),

		TitleSimThreshold: getFloat64OrDefault("TITLE_SIM", 0.60),
		TimeWindow:        time.Duration(getIntOrDefault("TIME_WINDOW_H", 168)) * time.Hour,
		PMChunkSize:       getIntOrDefault("PM_CHUNK", 400),

		WSDialTimeout:        getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPingInterval:       getDurationOrDefault("WS_PING_INTERVAL", 30*time.Second),
		WSReadDeadline:       getDurationOrDefault("WS_READ_DEADLINE", 60*time.Second),
		WSReconnectBaseDelay: getDurationOrDefault("WS_RECONNECT_BASE_DELAY", 2*time.Second),
		WSReconnectMaxDelay:  getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 60*time.Second),
		WSReconnectMult:      getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),

		EdgeMinRORPct:    getFloat64OrDefault("EDGE_MIN_ROR_PCT", 3.0),
		EngineTick:       getDurationOrDefault("ENGINE_TICK", time.Second),
		MaxOpportunities: getIntOrDefault("MAX_OPPORTUNITIES", 1000),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
// Invalid configuration is a fatal startup error.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR cannot be empty")
	}

	if c.PolymarketWSURL == "" {
		return fmt.Errorf("POLYMARKET_WS_URL cannot be empty")
	}

	if c.KalshiWSURL == "" {
		return fmt.Errorf("KALSHI_WS_URL cannot be empty")
	}

	if c.TitleSimThreshold <= 0 || c.TitleSimThreshold > 1.0 {
		return fmt.Errorf("TITLE_SIM must be between 0 and 1.0, got %f", c.TitleSimThreshold)
	}

	if c.PMChunkSize <= 0 {
		return fmt.Errorf("PM_CHUNK must be positive, got %d", c.PMChunkSize)
	}

	if c.EdgeMinRORPct < 0 {
		return fmt.Errorf("EDGE_MIN_ROR_PCT cannot be negative, got %f", c.EdgeMinRORPct)
	}

	if c.EngineTick <= 0 {
		return fmt.Errorf("ENGINE_TICK must be positive, got %s", c.EngineTick)
	}

	if c.MaxOpportunities <= 0 {
		return fmt.Errorf("MAX_OPPORTUNITIES must be positive, got %d", c.MaxOpportunities)
	}

	return nil
}

// KalshiEnabled reports whether both Kalshi credentials are configured.
func (c *Config) KalshiEnabled() bool {
	return c.KalshiKeyID != "" && c.KalshiKeyPath != ""
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
