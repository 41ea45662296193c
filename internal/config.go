package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigName = "mnemonic"
	DefaultMaxAgeDays = 180
	DefaultMaxBackups = 5
	EnvPrefix         = "MNEMONIC"
)

type StoreConfig struct {
	Files           []string `yaml:"files" mapstructure:"files"`
	ErrorCategories string   `yaml:"error_categories" mapstructure:"error_categories"`
}

type BackupConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MinAgeDays int    `yaml:"min_age_days" mapstructure:"min_age_days"`
}

type PruneConfig struct {
	MaxAgeDays   int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	NormalizeUTC bool `yaml:"normalize_utc" mapstructure:"normalize_utc"`
}

type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"`
	Level string `yaml:"level" mapstructure:"level"`
}

type MonitorConfig struct {
	// LogFile receives the monitor's own log lines and is never scanned.
	LogFile       string        `yaml:"log_file" mapstructure:"log_file"`
	LogFiles      []string      `yaml:"log_files" mapstructure:"log_files"`
	WindowMinutes int           `yaml:"window_minutes" mapstructure:"window_minutes"`
	HealthURL     string        `yaml:"health_url" mapstructure:"health_url"`
	HealthTimeout time.Duration `yaml:"health_timeout" mapstructure:"health_timeout"`
}

type AlertConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	SMTPServer string        `yaml:"smtp_server" mapstructure:"smtp_server"`
	SMTPPort   int           `yaml:"smtp_port" mapstructure:"smtp_port"`
	Username   string        `yaml:"username,omitempty" mapstructure:"username"`
	Password   string        `yaml:"password,omitempty" mapstructure:"password"`
	From       string        `yaml:"from" mapstructure:"from"`
	To         string        `yaml:"to" mapstructure:"to"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type GitConfig struct {
	AutoCommit bool `yaml:"auto_commit" mapstructure:"auto_commit"`
}

type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Backup  BackupConfig  `yaml:"backup" mapstructure:"backup"`
	Prune   PruneConfig   `yaml:"prune" mapstructure:"prune"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
	Alert   AlertConfig   `yaml:"alert" mapstructure:"alert"`
	Git     GitConfig     `yaml:"git" mapstructure:"git"`
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Files:           []string{"structured_memory.yaml", "global_structured_memory.yaml"},
			ErrorCategories: "error_categories.yaml",
		},
		Backup: BackupConfig{
			Dir:        "backups",
			MaxBackups: DefaultMaxBackups,
			MinAgeDays: DefaultMaxAgeDays,
		},
		Prune: PruneConfig{
			MaxAgeDays: DefaultMaxAgeDays,
		},
		Log: LogConfig{
			File:  "memory.log",
			Level: "info",
		},
		Monitor: MonitorConfig{
			LogFile:       "monitor.log",
			LogFiles:      []string{"mcp.log", "memory.log", "memory_check.log"},
			WindowMinutes: 60,
			HealthURL:     "http://localhost:8081/health",
			HealthTimeout: 5 * time.Second,
		},
		Alert: AlertConfig{
			SMTPServer: "localhost",
			SMTPPort:   587,
			From:       "brains-system@localhost",
			To:         "admin@localhost",
			Timeout:    10 * time.Second,
		},
	}
}

// legacyEnv maps config keys onto the environment variables the alerting
// scripts historically read.
var legacyEnv = map[string]string{
	"alert.enabled":     "ALERT_ENABLED",
	"alert.smtp_server": "SMTP_SERVER",
	"alert.smtp_port":   "SMTP_PORT",
	"alert.username":    "SMTP_USERNAME",
	"alert.password":    "SMTP_PASSWORD",
	"alert.from":        "FROM_EMAIL",
	"alert.to":          "TO_EMAIL",
}

// LoadConfig layers defaults, the config file and MNEMONIC_* environment
// variables. An empty path searches the working directory for mnemonic.yaml
// and tolerates its absence; an explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", legacy, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("store.files", cfg.Store.Files)
	v.SetDefault("store.error_categories", cfg.Store.ErrorCategories)
	v.SetDefault("backup.dir", cfg.Backup.Dir)
	v.SetDefault("backup.max_backups", cfg.Backup.MaxBackups)
	v.SetDefault("backup.min_age_days", cfg.Backup.MinAgeDays)
	v.SetDefault("prune.max_age_days", cfg.Prune.MaxAgeDays)
	v.SetDefault("prune.normalize_utc", cfg.Prune.NormalizeUTC)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("monitor.log_file", cfg.Monitor.LogFile)
	v.SetDefault("monitor.log_files", cfg.Monitor.LogFiles)
	v.SetDefault("monitor.window_minutes", cfg.Monitor.WindowMinutes)
	v.SetDefault("monitor.health_url", cfg.Monitor.HealthURL)
	v.SetDefault("monitor.health_timeout", cfg.Monitor.HealthTimeout)
	v.SetDefault("alert.enabled", cfg.Alert.Enabled)
	v.SetDefault("alert.smtp_server", cfg.Alert.SMTPServer)
	v.SetDefault("alert.smtp_port", cfg.Alert.SMTPPort)
	v.SetDefault("alert.username", cfg.Alert.Username)
	v.SetDefault("alert.password", cfg.Alert.Password)
	v.SetDefault("alert.from", cfg.Alert.From)
	v.SetDefault("alert.to", cfg.Alert.To)
	v.SetDefault("alert.timeout", cfg.Alert.Timeout)
	v.SetDefault("git.auto_commit", cfg.Git.AutoCommit)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Store.Files) == 0 {
		return fmt.Errorf("config: store.files must list at least one store")
	}
	if c.Backup.MaxBackups < 0 {
		return fmt.Errorf("config: backup.max_backups must not be negative, got %d", c.Backup.MaxBackups)
	}
	if c.Backup.MinAgeDays < 0 {
		return fmt.Errorf("config: backup.min_age_days must not be negative, got %d", c.Backup.MinAgeDays)
	}
	if c.Prune.MaxAgeDays <= 0 {
		return fmt.Errorf("config: prune.max_age_days must be positive, got %d", c.Prune.MaxAgeDays)
	}
	if c.Monitor.HealthTimeout <= 0 {
		return fmt.Errorf("config: monitor.health_timeout must be positive")
	}
	if c.Alert.Enabled {
		if c.Alert.SMTPServer == "" || c.Alert.SMTPPort <= 0 {
			return fmt.Errorf("config: alert.smtp_server and alert.smtp_port are required when alerts are enabled")
		}
		if c.Alert.From == "" || c.Alert.To == "" {
			return fmt.Errorf("config: alert.from and alert.to are required when alerts are enabled")
		}
	}
	return nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
