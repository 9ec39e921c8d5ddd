// Package config loads offtui settings from an optional YAML file and
// OFFTUI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/logging"
	"github.com/qyinm/offtui/offapi"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. OFFTUI_MCP_PORT.
const EnvPrefix = "OFFTUI"

type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Browse  BrowseConfig  `mapstructure:"browse"`
	Log     LogConfig     `mapstructure:"log"`
	Web     WebConfig     `mapstructure:"web"`
	MCP     MCPConfig     `mapstructure:"mcp"`
}

// CatalogConfig configures the Open Food Facts client.
type CatalogConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RPS       float64       `mapstructure:"rps" validate:"gt=0"`
	Burst     int           `mapstructure:"burst" validate:"gte=1"`
	PageSize  int           `mapstructure:"page_size" validate:"gte=1,lte=100"`
}

// BrowseConfig configures list behavior.
type BrowseConfig struct {
	Precedence string `mapstructure:"precedence" validate:"oneof=category combined"`
	ResetPage  bool   `mapstructure:"reset_page"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

// WebConfig configures the HTML front end.
type WebConfig struct {
	Port           string   `mapstructure:"port" validate:"required,numeric"`
	Environment    string   `mapstructure:"environment" validate:"oneof=development production"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MCPConfig configures the MCP servers.
type MCPConfig struct {
	Port           string        `mapstructure:"port" validate:"required,numeric"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Stateless      bool          `mapstructure:"stateless"`
	RPS            float64       `mapstructure:"rps" validate:"gt=0"`
	Burst          int           `mapstructure:"burst" validate:"gte=1"`
	SessionTimeout time.Duration `mapstructure:"session_timeout" validate:"gte=0"`
	APIKey         string        `mapstructure:"api_key"`
}

// Load reads configuration. An explicit path must exist; with an empty
// path offtui.yaml is looked up in the working directory and
// $HOME/.config/offtui, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("offtui")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/offtui")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Web.AllowedOrigins = splitList(cfg.Web.AllowedOrigins)
	cfg.MCP.AllowedOrigins = splitList(cfg.MCP.AllowedOrigins)
	cfg.Browse.Precedence = strings.ToLower(strings.TrimSpace(cfg.Browse.Precedence))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", offapi.DefaultBaseURL)
	v.SetDefault("catalog.user_agent", offapi.DefaultUserAgent)
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.rps", 2)
	v.SetDefault("catalog.burst", 5)
	v.SetDefault("catalog.page_size", offapi.DefaultPageSize)

	v.SetDefault("browse.precedence", "category")
	v.SetDefault("browse.reset_page", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.development", false)

	v.SetDefault("web.port", "8080")
	v.SetDefault("web.environment", "development")
	v.SetDefault("web.allowed_origins", []string{})

	v.SetDefault("mcp.port", "8081")
	v.SetDefault("mcp.allowed_origins", []string{})
	v.SetDefault("mcp.stateless", false)
	v.SetDefault("mcp.rps", 2)
	v.SetDefault("mcp.burst", 5)
	v.SetDefault("mcp.session_timeout", "15m")
	v.SetDefault("mcp.api_key", "")
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// env values arrive as one comma separated string.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// ClientConfig returns the catalog client settings.
func (c CatalogConfig) ClientConfig() offapi.Config {
	return offapi.Config{
		BaseURL:   c.BaseURL,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
		RPS:       c.RPS,
		Burst:     c.Burst,
		PageSize:  c.PageSize,
	}
}

// Options returns the list options. The page size follows the catalog.
func (c Config) Options() browse.Options {
	precedence, err := browse.ParsePrecedence(c.Browse.Precedence)
	if err != nil {
		precedence = browse.PrecedenceCategory
	}
	return browse.Options{
		Precedence:             precedence,
		ResetPageOnQueryChange: c.Browse.ResetPage,
		PageSize:               c.Catalog.PageSize,
	}
}

// Logging returns the logger settings.
func (c LogConfig) Logging() logging.Config {
	return logging.Config{Level: c.Level, File: c.File, Development: c.Development}
}
