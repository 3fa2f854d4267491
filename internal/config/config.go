package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/julianstephens/agenda/internal/constants"
	"github.com/julianstephens/agenda/internal/keyring"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/utils"
)

// KeyringDatabase is the database value that defers to the OS keyring.
const KeyringDatabase = "keyring"

type NotifyConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Window   time.Duration `mapstructure:"window" yaml:"window"`
}

type BackupConfig struct {
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// Config is the application configuration.
type Config struct {
	// Database is a SQLite path, a PostgreSQL URL, or "keyring".
	Database    string       `mapstructure:"database" yaml:"database"`
	Timezone    string       `mapstructure:"timezone" yaml:"timezone"`
	HorizonDays int          `mapstructure:"horizon_days" yaml:"horizon_days"`
	AlertDays   int          `mapstructure:"alert_days" yaml:"alert_days"`
	Notify      NotifyConfig `mapstructure:"notify" yaml:"notify"`
	Backup      BackupConfig `mapstructure:"backup" yaml:"backup"`
	Debug       bool         `mapstructure:"debug" yaml:"debug"`
	LogLevel    string       `mapstructure:"log_level" yaml:"log_level"`

	// ConfigDir is where the config file, logs and default database live.
	ConfigDir string `mapstructure:"-" yaml:"-"`
}

// DefaultConfigPath returns ~/.config/agenda/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ExpandHome(constants.DefaultConfigDir), "config.yaml")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database", constants.DefaultDBPath)
	v.SetDefault("timezone", "Local")
	v.SetDefault("horizon_days", constants.DefaultHorizonDays)
	v.SetDefault("alert_days", constants.DefaultAlertDays)
	v.SetDefault("notify.interval", constants.DefaultNotifyInterval)
	v.SetDefault("notify.window", constants.DefaultNotifyWindow)
	v.SetDefault("backup.max_backups", constants.MaxBackups)
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "warn")
}

// Load reads the YAML file at path, layered over defaults and under AGENDA_*
// environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	path = ExpandHome(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, missing := err.(*os.PathError)
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			missing = true
		}
		if !missing {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.ConfigDir = filepath.Dir(path)
	cfg.Database = ExpandHome(cfg.Database)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot work with.
func (c *Config) Validate() error {
	if c.HorizonDays <= 0 {
		return fmt.Errorf("horizon_days must be positive, got %d", c.HorizonDays)
	}
	if c.AlertDays < 0 {
		return fmt.Errorf("alert_days must not be negative, got %d", c.AlertDays)
	}
	if c.Notify.Interval <= 0 {
		return fmt.Errorf("notify.interval must be positive, got %s", c.Notify.Interval)
	}
	if c.Notify.Window <= 0 {
		return fmt.Errorf("notify.window must be positive, got %s", c.Notify.Window)
	}
	if c.Backup.MaxBackups < 1 {
		return fmt.Errorf("backup.max_backups must be at least 1, got %d", c.Backup.MaxBackups)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return nil
}

// ResolveDatabase returns the connection target, reading it from the OS
// keyring when the configured value is "keyring".
func (c *Config) ResolveDatabase() (string, error) {
	if c.Database != KeyringDatabase {
		return c.Database, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		return "", fmt.Errorf("database is set to %q: %w", KeyringDatabase, err)
	}
	return connStr, nil
}

// Save writes c to path as YAML.
func Save(path string, c *Config) error {
	path = ExpandHome(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("database", c.Database)
	v.Set("timezone", c.Timezone)
	v.Set("horizon_days", c.HorizonDays)
	v.Set("alert_days", c.AlertDays)
	v.Set("notify.interval", c.Notify.Interval.String())
	v.Set("notify.window", c.Notify.Window.String())
	v.Set("backup.max_backups", c.Backup.MaxBackups)
	v.Set("debug", c.Debug)
	v.Set("log_level", c.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
