package config

import "time"

// Config holds runtime settings for the task planner CLI: where the backend
// lives, how often to probe it, and where the local cache database sits.
//
// OnlineCheckInterval is a time.Duration (e.g. 3*time.Second).
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	CacheFile           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8000"
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheFile = "taskplanner.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
