package mcpsrv

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/qyinm/offtui/config"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	Stateless      bool
	RPS            float64
	Burst          int
	SessionTimeout time.Duration
	APIKey         string
}

// FromConfig maps the mcp section of the loaded configuration.
func FromConfig(c config.MCPConfig) Config {
	cfg := Config{
		Port:           c.Port,
		AllowedOrigins: append([]string(nil), c.AllowedOrigins...),
		Stateless:      c.Stateless,
		RPS:            c.RPS,
		Burst:          c.Burst,
		SessionTimeout: c.SessionTimeout,
		APIKey:         c.APIKey,
	}
	if cfg.Port == "" {
		cfg.Port = "8081"
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return cfg
}

func StreamableOptions(cfg Config) *mcp.StreamableHTTPOptions {
	return &mcp.StreamableHTTPOptions{
		Stateless:      cfg.Stateless,
		SessionTimeout: cfg.SessionTimeout,
	}
}
