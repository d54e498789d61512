package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all client configuration
type Config struct {
	Backend       BackendConfig       `mapstructure:"backend"`
	State         StateConfig         `mapstructure:"state"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	OAuth         OAuthConfig         `mapstructure:"oauth"`
	Logger        LoggerConfig        `mapstructure:"logger"`
}

// BackendConfig holds the REST backend connection settings
type BackendConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
}

// StateConfig holds client-local storage locations
type StateConfig struct {
	Dir          string `mapstructure:"dir"`
	DownloadsDir string `mapstructure:"downloads_dir"`
}

// NotificationsConfig holds the bell notification polling settings
type NotificationsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// OAuthConfig holds the localhost OAuth2 callback listener settings
type OAuthConfig struct {
	CallbackAddr string `mapstructure:"callback_addr"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. A missing
// config file falls back to defaults so the client works out of the box.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	home, _ := os.UserHomeDir()

	viper.SetDefault("backend.base_url", "http://localhost:8080")
	viper.SetDefault("backend.timeout", 30*time.Second)
	viper.SetDefault("backend.redirect_delay", time.Second)

	viper.SetDefault("state.dir", filepath.Join(home, ".expensectl"))
	viper.SetDefault("state.downloads_dir", filepath.Join(home, "Downloads"))

	viper.SetDefault("notifications.poll_interval", 30*time.Second)

	viper.SetDefault("oauth.callback_addr", "127.0.0.1:8910")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stderr")
	viper.SetDefault("logger.format", "console")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("backend.base_url", "EXPENSECTL_BACKEND_URL")
	viper.BindEnv("state.dir", "EXPENSECTL_STATE_DIR")
	viper.BindEnv("state.downloads_dir", "EXPENSECTL_DOWNLOADS_DIR")
	viper.BindEnv("logger.level", "EXPENSECTL_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.State.Dir == "" {
		return fmt.Errorf("state.dir is required")
	}
	if c.Notifications.PollInterval <= 0 {
		return fmt.Errorf("notifications.poll_interval must be positive")
	}
	return nil
}
