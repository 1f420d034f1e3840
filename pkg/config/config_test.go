package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default HTTP addr :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.EdgeMinRORPct != 3.0 {
		t.Errorf("expected default threshold 3.0, got %f", cfg.EdgeMinRORPct)
	}
	if cfg.TitleSimThreshold != 0.60 {
		t.Errorf("expected default title similarity 0.60, got %f", cfg.TitleSimThreshold)
	}
	if cfg.TimeWindow != 168*time.Hour {
		t.Errorf("expected default time window 168h, got %s", cfg.TimeWindow)
	}
	if cfg.PMChunkSize != 400 {
		t.Errorf("expected default chunk size 400, got %d", cfg.PMChunkSize)
	}
	if cfg.EngineTick != time.Second {
		t.Errorf("expected default engine tick 1s, got %s", cfg.EngineTick)
	}
	if cfg.MaxOpportunities != 1000 {
		t.Errorf("expected default max opportunities 1000, got %d", cfg.MaxOpportunities)
	}
	if cfg.WSReconnectBaseDelay != 2*time.Second || cfg.WSReconnectMaxDelay != 60*time.Second {
		t.Errorf("unexpected default backoff: %s / %s", cfg.WSReconnectBaseDelay, cfg.WSReconnectMaxDelay)
	}
	if cfg.KalshiEnabled() {
		t.Error("kalshi must be disabled without credentials")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("EDGE_MIN_ROR_PCT", "5.5")
	t.Setenv("TITLE_SIM", "0.8")
	t.Setenv("TIME_WINDOW_H", "24")
	t.Setenv("PM_CHUNK", "100")
	t.Setenv("KALSHI_KEY_ID", "key-id")
	t.Setenv("KALSHI_PRIVATE_KEY_PATH", "/keys/kalshi.pem")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error: %v", err)
	}

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("expected :9999, got %q", cfg.HTTPAddr)
	}
	if cfg.EdgeMinRORPct != 5.5 {
		t.Errorf("expected 5.5, got %f", cfg.EdgeMinRORPct)
	}
	if cfg.TitleSimThreshold != 0.8 {
		t.Errorf("expected 0.8, got %f", cfg.TitleSimThreshold)
	}
	if cfg.TimeWindow != 24*time.Hour {
		t.Errorf("expected 24h, got %s", cfg.TimeWindow)
	}
	if cfg.PMChunkSize != 100 {
		t.Errorf("expected 100, got %d", cfg.PMChunkSize)
	}
	if !cfg.KalshiEnabled() {
		t.Error("kalshi must be enabled with both credentials set")
	}
}

func TestLoadFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("EDGE_MIN_ROR_PCT", "not-a-number")
	t.Setenv("PM_CHUNK", "4.5")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error: %v", err)
	}

	if cfg.EdgeMinRORPct != 3.0 {
		t.Errorf("expected default 3.0, got %f", cfg.EdgeMinRORPct)
	}
	if cfg.PMChunkSize != 400 {
		t.Errorf("expected default 400, got %d", cfg.PMChunkSize)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPAddr:          ":8080",
			PolymarketWSURL:   "wss://example.com/ws/",
			KalshiWSURL:       "wss://example.com/trade-api/ws/v2",
			TitleSimThreshold: 0.6,
			PMChunkSize:       400,
			EdgeMinRORPct:     3.0,
			EngineTick:        time.Second,
			MaxOpportunities:  1000,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty-http-addr", mutate: func(c *Config) { c.HTTPAddr = "" }, wantErr: true},
		{name: "empty-pm-ws-url", mutate: func(c *Config) { c.PolymarketWSURL = "" }, wantErr: true},
		{name: "empty-kalshi-ws-url", mutate: func(c *Config) { c.KalshiWSURL = "" }, wantErr: true},
		{name: "title-sim-zero", mutate: func(c *Config) { c.TitleSimThreshold = 0 }, wantErr: true},
		{name: "title-sim-above-one", mutate: func(c *Config) { c.TitleSimThreshold = 1.5 }, wantErr: true},
		{name: "chunk-size-zero", mutate: func(c *Config) { c.PMChunkSize = 0 }, wantErr: true},
		{name: "negative-threshold", mutate: func(c *Config) { c.EdgeMinRORPct = -1 }, wantErr: true},
		{name: "zero-tick", mutate: func(c *Config) { c.EngineTick = 0 }, wantErr: true},
		{name: "zero-max-opportunities", mutate: func(c *Config) { c.MaxOpportunities = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
