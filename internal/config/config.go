package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
	CORSOrigin        string `json:"cors_origin"`
}

type Polygon struct {
	APIKey             string `json:"api_key"`
	Endpoint           string `json:"endpoint"`
	MaxCallsPerMinute  int    `json:"max_calls_per_minute"`
	MinCallIntervalSec int    `json:"min_call_interval_sec"`
	Burst              int    `json:"burst"`
}

type Universe struct {
	Symbols []string `json:"symbols"`
	// ReferenceDate is the trading date (YYYY-MM-DD) whose opening prices
	// anchor the simulation. Required; there is no built-in default.
	ReferenceDate string `json:"reference_date"`
}

type Store struct {
	Backend string `json:"backend"` // "file" or "sqlite"
	Path    string `json:"path"`
}

type Sim struct {
	TickSec int `json:"tick_sec"`
}

type Config struct {
	Server   Server   `json:"server"`
	Polygon  Polygon  `json:"polygon"`
	Universe Universe `json:"universe"`
	Store    Store    `json:"store"`
	Sim      Sim      `json:"sim"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "5000", RequestTimeoutSec: 15, CORSOrigin: "http://localhost:3000"},
		Polygon: Polygon{
			Endpoint:          "https://api.polygon.io",
			MaxCallsPerMinute: 5,
			Burst:             1,
		},
		Universe: Universe{
			Symbols: []string{
				"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "NFLX", "META", "NVDA", "PYPL", "INTC",
				"AMD", "IBM", "CSCO", "ORCL", "QCOM", "V", "GS", "JPM", "DIS", "BA",
			},
		},
		Store: Store{Backend: "file", Path: "stocksData.json"},
		Sim:   Sim{TickSec: 1},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Universe.ReferenceDate != "" {
		if _, err := time.Parse("2006-01-02", cfg.Universe.ReferenceDate); err != nil {
			return fmt.Errorf("reference_date %q: want YYYY-MM-DD", cfg.Universe.ReferenceDate)
		}
	}
	switch cfg.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("store backend %q: want file or sqlite", cfg.Store.Backend)
	}
	if cfg.Sim.TickSec <= 0 {
		return fmt.Errorf("tick_sec must be positive, got %d", cfg.Sim.TickSec)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.Server.CORSOrigin = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Polygon.APIKey = v
	}
	if v := os.Getenv("POLYGON_ENDPOINT"); v != "" {
		cfg.Polygon.Endpoint = v
	}
	if v := os.Getenv("POLYGON_MAX_RPM"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Polygon.MaxCallsPerMinute = x
		}
	}
	if v := os.Getenv("POLYGON_MIN_INTERVAL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Polygon.MinCallIntervalSec = x
		}
	}
	if v := os.Getenv("POLYGON_BURST"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Polygon.Burst = x
		}
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Universe.Symbols = splitCSV(v)
	}
	if v := os.Getenv("REFERENCE_DATE"); v != "" {
		cfg.Universe.ReferenceDate = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TICK_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Sim.TickSec = x
		}
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
