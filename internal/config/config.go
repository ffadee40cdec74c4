package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig   `mapstructure:"server"`
	Book          BookConfig     `mapstructure:"book"`
	Downloads     DownloadConfig `mapstructure:"downloads"`
	Network       NetworkConfig  `mapstructure:"network"`
	Watch         WatchConfig    `mapstructure:"watch"`
	Sections      SectionsConfig `mapstructure:"sections"`
	Cache         CacheConfig    `mapstructure:"cache"`
	Notifications NotifyConfig   `mapstructure:"notifications"`
}

// ServerConfig holds the publishing service endpoints
type ServerConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	VersionURL string `mapstructure:"version_url"`
}

// BookConfig holds defaults applied to new books
type BookConfig struct {
	Filetype string `mapstructure:"filetype"`
	Email    string `mapstructure:"email"`
}

// DownloadConfig holds download settings
type DownloadConfig struct {
	Path string `mapstructure:"path"`
}

// NetworkConfig holds network settings
type NetworkConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	Proxy     string        `mapstructure:"proxy"` // SOCKS5 host:port
}

// WatchConfig controls how build status is polled
type WatchConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxInterval time.Duration `mapstructure:"max_interval"`
	Multiplier  float64       `mapstructure:"multiplier"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SectionsConfig controls local pre-fetching of page content
type SectionsConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Render  bool          `mapstructure:"render"` // use a headless browser
}

// CacheConfig controls the local cache of fetched pages
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// NotifyConfig holds desktop notification settings
type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var cfg *Config

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "epubpress")
}

// GetDBPath returns the database file path
func GetDBPath() string {
	return filepath.Join(GetConfigDir(), "epubpress.db")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Init initializes the configuration
func Init(cfgFile string) error {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	viper.SetDefault("server.base_url", "https://epub.press")
	viper.SetDefault("server.version_url", "https://epub.press/api/version")
	viper.SetDefault("book.filetype", "epub")
	viper.SetDefault("book.email", "")
	viper.SetDefault("downloads.path", "~/Downloads/books")
	viper.SetDefault("network.timeout", 30*time.Second)
	viper.SetDefault("network.user_agent", "epubpress-go")
	viper.SetDefault("network.proxy", "")
	viper.SetDefault("watch.interval", 2*time.Second)
	viper.SetDefault("watch.max_interval", 15*time.Second)
	viper.SetDefault("watch.multiplier", 1.5)
	viper.SetDefault("watch.timeout", 10*time.Minute)
	viper.SetDefault("sections.timeout", 30*time.Second)
	viper.SetDefault("sections.render", false)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("notifications.enabled", false)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetConfigDir())
	}

	// Environment variable overrides
	viper.SetEnvPrefix("EPUBPRESS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	cfg = nil
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
		_ = viper.Unmarshal(cfg)
		cfg.Downloads.Path = expandPath(cfg.Downloads.Path)
	}
	return cfg
}

// Set sets a configuration value
func Set(key, value string) error {
	viper.Set(key, value)

	// Ensure config directory exists
	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// Reset cached config
	cfg = nil

	return viper.WriteConfigAs(GetConfigPath())
}

// GetValue retrieves a configuration value
func GetValue(key string) interface{} {
	return viper.Get(key)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
