package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"blocc-dashboard/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	API       APIConfig       `mapstructure:"api"`
	Poll      PollConfig      `mapstructure:"poll"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Server    ServerConfig    `mapstructure:"server"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// APIConfig locates the BLOCC backend.
type APIConfig struct {
	Root           string        `mapstructure:"root"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// PollConfig governs polling cadence.
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// DashboardConfig describes what the dashboard shows.
type DashboardConfig struct {
	Containers      []int         `mapstructure:"containers"`
	SeriesContainer int           `mapstructure:"series_container"`
	SeriesWindow    time.Duration `mapstructure:"series_window"`
	PageSize        int           `mapstructure:"page_size"`
	Timezone        string        `mapstructure:"timezone"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PublicURL is linked from alerts when set.
	PublicURL string `mapstructure:"public_url"`
}

// AlertingConfig defines fork alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BLOCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "blocc-dashboard")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("api.root", "http://localhost:3000/api/v1")
	v.SetDefault("api.request_timeout", "10s")
	v.SetDefault("api.user_agent", "blocc-dashboard/1.0")

	v.SetDefault("poll.interval", "5s")

	v.SetDefault("dashboard.containers", []int{1, 2, 3, 4, 5, 6})
	v.SetDefault("dashboard.series_container", 5)
	v.SetDefault("dashboard.series_window", "10m")
	v.SetDefault("dashboard.page_size", 10)
	v.SetDefault("dashboard.timezone", "UTC")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 10000)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	root, err := url.Parse(c.API.Root)
	if err != nil || root.Host == "" || (root.Scheme != "http" && root.Scheme != "https") {
		return fmt.Errorf("api.root must be an absolute http(s) url, got %q", c.API.Root)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be greater than zero")
	}
	if len(c.Dashboard.Containers) == 0 {
		return fmt.Errorf("dashboard.containers must list at least one container")
	}
	seen := make(map[int]bool, len(c.Dashboard.Containers))
	for _, n := range c.Dashboard.Containers {
		if n <= 0 {
			return fmt.Errorf("dashboard.containers must be positive, got %d", n)
		}
		if seen[n] {
			return fmt.Errorf("dashboard.containers lists container %d twice", n)
		}
		seen[n] = true
	}
	if c.Dashboard.SeriesContainer <= 0 {
		return fmt.Errorf("dashboard.series_container must be positive")
	}
	if c.Dashboard.SeriesWindow <= 0 {
		return fmt.Errorf("dashboard.series_window must be greater than zero")
	}
	if c.Dashboard.PageSize <= 0 {
		return fmt.Errorf("dashboard.page_size must be greater than zero")
	}
	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("dashboard.timezone: %w", err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// Location resolves the display timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
