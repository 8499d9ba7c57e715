package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ODDS_SERVER_PORT.
const EnvPrefix = "ODDS"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Odds     OddsConfig     `mapstructure:"odds"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	Mode              string        `mapstructure:"mode"` // gin mode: debug/release/test
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type BrowserConfig struct {
	Headless         bool     `mapstructure:"headless"`
	NoSandbox        bool     `mapstructure:"no_sandbox"`
	UserAgent        string   `mapstructure:"user_agent"`
	ExecPath         string   `mapstructure:"exec_path"` // empty = let chromedp find Chrome
	MaxPages         int      `mapstructure:"max_pages"` // tabs open at the same time
	BlockedResources []string `mapstructure:"blocked_resources"`
	Debug            bool     `mapstructure:"debug"` // forward chromedp logs
}

type OddsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	OddsType          string        `mapstructure:"odds_type"`
	TableSelector     string        `mapstructure:"table_selector"`
	MaxRows           int           `mapstructure:"max_rows"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SelectorTimeout   time.Duration `mapstructure:"selector_timeout"`
	ExtractTimeout    time.Duration `mapstructure:"extract_timeout"`
}

type ScheduleConfig struct {
	Open     string `mapstructure:"open"`     // "15:04"
	Close    string `mapstructure:"close"`    // "15:04", inclusive
	Timezone string `mapstructure:"timezone"` // IANA name; empty or "Local" = server time
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 20*time.Second)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.max_pages", 4)
	v.SetDefault("browser.blocked_resources", []string{"image", "stylesheet", "font"})
	v.SetDefault("browser.debug", false)

	v.SetDefault("odds.base_url", "https://keirin.netkeiba.com/race/odds/")
	v.SetDefault("odds.odds_type", "odds3tan")
	v.SetDefault("odds.table_selector", "table.OddsTable")
	v.SetDefault("odds.max_rows", 100)
	v.SetDefault("odds.navigation_timeout", 10*time.Second)
	v.SetDefault("odds.selector_timeout", 5*time.Second)
	v.SetDefault("odds.extract_timeout", 5*time.Second)

	v.SetDefault("schedule.open", "08:00")
	v.SetDefault("schedule.close", "23:30")
	v.SetDefault("schedule.timezone", "Local")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads the YAML config at configPath on top of built-in defaults.
// A missing file is not an error: the defaults plus ODDS_* env overrides are used.
// Values from a .env file in the working directory are loaded into the environment first.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late, at request time.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be greater than 0"))
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q: expected debug, release or test", c.Server.Mode))
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_header_timeout must be specified"))
	}
	if c.Browser.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("browser.max_pages must be greater than 0"))
	}
	if c.Odds.BaseURL == "" {
		errs = append(errs, fmt.Errorf("odds.base_url must be specified"))
	}
	if c.Odds.TableSelector == "" {
		errs = append(errs, fmt.Errorf("odds.table_selector must be specified"))
	}
	if c.Odds.MaxRows <= 0 {
		errs = append(errs, fmt.Errorf("odds.max_rows must be greater than 0"))
	}
	if c.Odds.NavigationTimeout <= 0 || c.Odds.SelectorTimeout <= 0 || c.Odds.ExtractTimeout <= 0 {
		errs = append(errs, fmt.Errorf("odds timeouts must be greater than 0"))
	}
	if _, err := time.Parse("15:04", c.Schedule.Open); err != nil {
		errs = append(errs, fmt.Errorf("schedule.open %q: expected HH:MM", c.Schedule.Open))
	}
	if _, err := time.Parse("15:04", c.Schedule.Close); err != nil {
		errs = append(errs, fmt.Errorf("schedule.close %q: expected HH:MM", c.Schedule.Close))
	}
	if _, err := c.Schedule.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Location resolves the configured time zone. Race dates and the service
// window are both evaluated in it.
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}
