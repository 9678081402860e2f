package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all pricewatch configuration.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Channels  ChannelsConfig  `mapstructure:"channels"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines HTTP API settings.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// SchedulerConfig defines sweep timing.
type SchedulerConfig struct {
	Interval      string `mapstructure:"interval"`
	Concurrency   int    `mapstructure:"concurrency"`
	BatchPause    string `mapstructure:"batch_pause"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// SourcesConfig defines platform client settings.
type SourcesConfig struct {
	// Simulation serves deterministic quotes for platforms without
	// credentials instead of failing their checks.
	Simulation bool   `mapstructure:"simulation"`
	Catalog    string `mapstructure:"catalog"`
	Timeout    string `mapstructure:"timeout"`

	Amazon  AmazonConfig  `mapstructure:"amazon"`
	Ebay    EbayConfig    `mapstructure:"ebay"`
	Walmart WalmartConfig `mapstructure:"walmart"`
	BestBuy BestBuyConfig `mapstructure:"bestbuy"`
	Target  TargetConfig  `mapstructure:"target"`
}

// AmazonConfig defines Product Advertising API credentials.
type AmazonConfig struct {
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	PartnerTag string `mapstructure:"partner_tag"`
	Endpoint   string `mapstructure:"endpoint"`
}

// EbayConfig defines Browse API credentials.
type EbayConfig struct {
	Token string `mapstructure:"token"`
}

// WalmartConfig defines affiliate API credentials.
type WalmartConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// BestBuyConfig defines Products API credentials.
type BestBuyConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// TargetConfig defines Redsky API credentials.
type TargetConfig struct {
	APIKey  string `mapstructure:"api_key"`
	StoreID string `mapstructure:"store_id"`
}

// ChannelsConfig defines notification integrations.
type ChannelsConfig struct {
	Email   EmailConfig       `mapstructure:"email"`
	Slack   SlackConfig       `mapstructure:"slack"`
	SMS     SMSConfig         `mapstructure:"sms"`
	Push    PushConfig        `mapstructure:"push"`
	Webhook WebhookChanConfig `mapstructure:"webhook"`
}

// EmailConfig defines SMTP settings.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SMSConfig defines Twilio settings.
type SMSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
}

// PushConfig defines Pushover settings.
type PushConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	AppToken string `mapstructure:"app_token"`
}

// WebhookChanConfig defines generic webhook settings.
type WebhookChanConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Secret      string `mapstructure:"secret"`
	MaxAttempts int    `mapstructure:"max_attempts"`
	Backoff     string `mapstructure:"backoff"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultsConfig defines default values.
type DefaultsConfig struct {
	Owner       string `mapstructure:"owner"`
	NotifyEmail string `mapstructure:"notify_email"`
	Currency    string `mapstructure:"currency"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".pricewatch"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.path", filepath.Join(home, ".pricewatch", "pricewatch.db"))
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.concurrency", 5)
	v.SetDefault("scheduler.batch_pause", "1s")
	v.SetDefault("scheduler.retention_days", 90)
	v.SetDefault("sources.simulation", true)
	v.SetDefault("sources.timeout", "30s")
	v.SetDefault("channels.email.port", 587)
	v.SetDefault("channels.webhook.max_attempts", 3)
	v.SetDefault("channels.webhook.backoff", "1s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("defaults.owner", "default")
	v.SetDefault("defaults.currency", "USD")

	// Environment variables
	v.SetEnvPrefix("PRICEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
