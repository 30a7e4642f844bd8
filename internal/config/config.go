// Package config loads application configuration from config.yaml and the
// environment, and initializes the global logger.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the incident dataset. Path wins when both are set; URL
// downloads the dataset at startup (and on scheduled refresh).
type DataConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	URL  string `yaml:"url" mapstructure:"url"`
}

// FetchConfig tunes the remote dataset download.
type FetchConfig struct {
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// RefreshConfig configures scheduled dataset reloads while serving. An empty
// spec disables refreshing.
type RefreshConfig struct {
	Spec string `yaml:"spec" mapstructure:"spec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.path", "data/merged_dashboard_data.csv")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.requests_per_second", 2.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("refresh.spec", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// WriteStarter writes a starter config file. It refuses to overwrite an
// existing file.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return eris.Errorf("config: %s already exists", path)
	}

	starter := Config{
		Data:   DataConfig{Path: "data/merged_dashboard_data.csv"},
		Fetch:  FetchConfig{TimeoutSecs: 60, MaxRetries: 3, RequestsPerSecond: 2},
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
	out, err := yaml.Marshal(starter)
	if err != nil {
		return eris.Wrap(err, "config: marshal starter")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrap(err, "config: write starter")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
