package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/pkg/engine"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/sources"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pricewatch",
	Short: "pricewatch - Multi-platform product price tracking and alerting",
	Long: `pricewatch follows product prices across Amazon, eBay, Walmart, Best Buy
and Target. It keeps full price history, fires alerts when prices cross
your targets, and delivers them over email, Slack, SMS, push or webhooks.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.pricewatch/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initRegistry creates the platform source registry from config.
func initRegistry(cfg *config.Config) (*sources.Registry, error) {
	timeout := parseDuration(cfg.Sources.Timeout, 30*time.Second)

	simulator := sources.NewSimulator()
	if cfg.Sources.Catalog != "" {
		if _, err := os.Stat(cfg.Sources.Catalog); err == nil {
			loaded, err := sources.NewSimulatorFromFile(cfg.Sources.Catalog)
			if err != nil {
				return nil, err
			}
			simulator = loaded
		}
	}

	registry := sources.NewRegistry(simulator, cfg.Sources.Simulation)

	clients := []sources.Source{
		sources.NewAmazon(sources.AmazonConfig{
			AccessKey:  cfg.Sources.Amazon.AccessKey,
			SecretKey:  cfg.Sources.Amazon.SecretKey,
			PartnerTag: cfg.Sources.Amazon.PartnerTag,
			Endpoint:   cfg.Sources.Amazon.Endpoint,
			Timeout:    timeout,
		}),
		sources.NewEbay(sources.EbayConfig{
			Token:   cfg.Sources.Ebay.Token,
			Timeout: timeout,
		}),
		sources.NewWalmart(sources.WalmartConfig{
			APIKey:  cfg.Sources.Walmart.APIKey,
			Timeout: timeout,
		}),
		sources.NewBestBuy(sources.BestBuyConfig{
			APIKey:  cfg.Sources.BestBuy.APIKey,
			Timeout: timeout,
		}),
		sources.NewTarget(sources.TargetConfig{
			APIKey:  cfg.Sources.Target.APIKey,
			StoreID: cfg.Sources.Target.StoreID,
			Timeout: timeout,
		}),
	}
	for _, c := range clients {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// initChannels creates notification channels from config.
func initChannels(cfg *config.Config) []notify.Channel {
	var channels []notify.Channel

	if cfg.Channels.Email.Enabled && cfg.Channels.Email.Host != "" {
		channels = append(channels, notify.NewEmailChannel(notify.EmailConfig{
			Host:     cfg.Channels.Email.Host,
			Port:     cfg.Channels.Email.Port,
			Username: cfg.Channels.Email.Username,
			Password: cfg.Channels.Email.Password,
			From:     cfg.Channels.Email.From,
		}))
	}

	if cfg.Channels.Slack.Enabled {
		channels = append(channels, notify.NewSlackChannel())
	}

	if cfg.Channels.SMS.Enabled && cfg.Channels.SMS.AccountSID != "" {
		channels = append(channels, notify.NewSMSChannel(notify.SMSConfig{
			AccountSID: cfg.Channels.SMS.AccountSID,
			AuthToken:  cfg.Channels.SMS.AuthToken,
			From:       cfg.Channels.SMS.From,
		}))
	}

	if cfg.Channels.Push.Enabled && cfg.Channels.Push.AppToken != "" {
		channels = append(channels, notify.NewPushChannel(notify.PushConfig{
			AppToken: cfg.Channels.Push.AppToken,
		}))
	}

	if cfg.Channels.Webhook.Enabled {
		channels = append(channels, notify.NewWebhookChannel(notify.WebhookConfig{
			Secret:      cfg.Channels.Webhook.Secret,
			MaxAttempts: cfg.Channels.Webhook.MaxAttempts,
			Backoff:     parseDuration(cfg.Channels.Webhook.Backoff, time.Second),
		}))
	}

	return channels
}

// initEngine creates a fully wired check engine. The registry is
// returned as well so commands can resolve product ids without
// building a second one.
func initEngine(cfg *config.Config) (*engine.Engine, *sources.Registry, storage.Storage, error) {
	logger := newLogger(cfg)

	store, err := initStorage(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	registry, err := initRegistry(cfg)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	dispatcher := notify.NewDispatcher(store, initChannels(cfg), logger)
	eng := engine.New(store, registry, dispatcher, logger, engine.Options{
		Concurrency: cfg.Scheduler.Concurrency,
		BatchPause:  parseDuration(cfg.Scheduler.BatchPause, time.Second),
	})

	return eng, registry, store, nil
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
