package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Chain identifies which adapter implementation a wallet entry uses.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainSolana   Chain = "solana"
	ChainCoinbase Chain = "coinbase"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Monitor       MonitorConfig       `yaml:"monitor"`
	Wallets       []WalletConfig      `yaml:"wallets"`
	Coinbase      CoinbaseConfig      `yaml:"coinbase"`
	Notifications NotificationConfig  `yaml:"notifications"`
	HomeAssistant HomeAssistantConfig `yaml:"homeAssistant"`
	Webhook       WebhookConfig       `yaml:"webhook"`
}

// ServerConfig holds the HTTP API server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// MonitorConfig holds the defaults shared by all wallet monitors. Individual
// wallet entries may override the intervals.
type MonitorConfig struct {
	PollIntervalSeconds    float64 `yaml:"pollIntervalSeconds"`
	FlushIntervalSeconds   float64 `yaml:"flushIntervalSeconds"`
	MaxPendingEvents       int     `yaml:"maxPendingEvents"`
	FetchTimeoutMillis     int64   `yaml:"fetchTimeoutMillis"`
	BreakerFailureLimit    int     `yaml:"breakerFailureLimit"`
	BreakerCooldownSeconds int     `yaml:"breakerCooldownSeconds"`
}

// WalletConfig declares one monitored wallet. Credentials are never stored in
// the YAML file; they are overlaid from the environment by LoadConfig so that
// adapters receive them as plain struct fields and never read the process
// environment themselves.
type WalletConfig struct {
	Name                 string   `yaml:"name"`
	Chain                Chain    `yaml:"chain"`
	Address              string   `yaml:"address"`
	Endpoint             string   `yaml:"endpoint"`
	TrackedAssets        []string `yaml:"trackedAssets"`
	PollIntervalSeconds  float64  `yaml:"pollIntervalSeconds"`
	FlushIntervalSeconds float64  `yaml:"flushIntervalSeconds"`

	// Populated from the environment, not from YAML.
	PrivateKey   string `yaml:"-"`
	APIKey       string `yaml:"-"`
	APISecret    string `yaml:"-"`
	WalletSecret string `yaml:"-"`
}

// PollInterval returns the effective poll interval for this wallet.
func (w WalletConfig) PollInterval(defaults MonitorConfig) time.Duration {
	secs := w.PollIntervalSeconds
	if secs <= 0 {
		secs = defaults.PollIntervalSeconds
	}
	return time.Duration(secs * float64(time.Second))
}

// FlushInterval returns the effective flush interval for this wallet.
func (w WalletConfig) FlushInterval(defaults MonitorConfig) time.Duration {
	secs := w.FlushIntervalSeconds
	if secs <= 0 {
		secs = defaults.FlushIntervalSeconds
	}
	return time.Duration(secs * float64(time.Second))
}

// CoinbaseConfig holds the custodial API client configuration.
type CoinbaseConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RateLimitPerSecond   float64 `yaml:"rateLimitPerSecond"`
	RateBurst            int     `yaml:"rateBurst"`
}

// NotificationConfig controls the notification sink and the recent-message
// cache served by the API.
type NotificationConfig struct {
	ChannelBuffer      int `yaml:"channelBuffer"`
	RecentTTLMinutes   int `yaml:"recentTTLMinutes"`
	RecentSweepMinutes int `yaml:"recentSweepMinutes"`
}

// HomeAssistantConfig holds the Home Assistant REST configuration used by the
// light-command webhook receiver.
type HomeAssistantConfig struct {
	URL                  string `yaml:"url"`
	Token                string `yaml:"-"` // from HA_TOKEN
	EntityID             string `yaml:"entityID"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// WebhookConfig holds the webhook receiver server configuration.
type WebhookConfig struct {
	Port string `yaml:"port"`
}

// LoadConfig loads configuration from a YAML file, then overlays credentials
// and endpoint overrides from the environment. A missing .env file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %v", err)
	}

	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvironment(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Monitor.PollIntervalSeconds <= 0 {
		cfg.Monitor.PollIntervalSeconds = 0.5
		logrus.Infof("Monitor.PollIntervalSeconds not set, defaulting to %.1f", cfg.Monitor.PollIntervalSeconds)
	}
	if cfg.Monitor.FlushIntervalSeconds <= 0 {
		cfg.Monitor.FlushIntervalSeconds = 5
		logrus.Infof("Monitor.FlushIntervalSeconds not set, defaulting to %.0f", cfg.Monitor.FlushIntervalSeconds)
	}
	if cfg.Monitor.MaxPendingEvents <= 0 {
		cfg.Monitor.MaxPendingEvents = 16
	}
	if cfg.Monitor.FetchTimeoutMillis <= 0 {
		// Bounded by the poll interval so a stalled endpoint cannot starve
		// subsequent polls.
		cfg.Monitor.FetchTimeoutMillis = int64(cfg.Monitor.PollIntervalSeconds * 1000)
	}
	if cfg.Monitor.BreakerFailureLimit <= 0 {
		cfg.Monitor.BreakerFailureLimit = 5
	}
	if cfg.Monitor.BreakerCooldownSeconds <= 0 {
		cfg.Monitor.BreakerCooldownSeconds = 30
	}
	if cfg.Coinbase.BaseURL == "" {
		cfg.Coinbase.BaseURL = "https://api.cdp.coinbase.com"
	}
	if cfg.Coinbase.RequestTimeoutMillis <= 0 {
		cfg.Coinbase.RequestTimeoutMillis = 10000
	}
	if cfg.Coinbase.RateLimitPerSecond <= 0 {
		cfg.Coinbase.RateLimitPerSecond = 10
	}
	if cfg.Coinbase.RateBurst <= 0 {
		cfg.Coinbase.RateBurst = 5
	}
	if cfg.Notifications.ChannelBuffer <= 0 {
		cfg.Notifications.ChannelBuffer = 64
	}
	if cfg.Notifications.RecentTTLMinutes <= 0 {
		cfg.Notifications.RecentTTLMinutes = 60
	}
	if cfg.Notifications.RecentSweepMinutes <= 0 {
		cfg.Notifications.RecentSweepMinutes = 10
	}
	if cfg.HomeAssistant.EntityID == "" {
		cfg.HomeAssistant.EntityID = "light.smart_bulb"
	}
	if cfg.HomeAssistant.RequestTimeoutMillis <= 0 {
		cfg.HomeAssistant.RequestTimeoutMillis = 10000
	}
	if cfg.Webhook.Port == "" {
		cfg.Webhook.Port = "5000"
	}

	for i := range cfg.Wallets {
		w := &cfg.Wallets[i]
		if w.Name == "" {
			w.Name = string(w.Chain)
		}
		if len(w.TrackedAssets) == 0 {
			switch w.Chain {
			case ChainSolana:
				w.TrackedAssets = []string{"sol"}
			default:
				w.TrackedAssets = []string{"eth"}
			}
		}
	}
}

// applyEnvironment overlays per-chain credentials from the environment. The
// variable names match the original deployment so existing .env files keep
// working. Absence of a private key is not an error, it selects read-only
// capability.
func applyEnvironment(cfg *Config) {
	for i := range cfg.Wallets {
		w := &cfg.Wallets[i]
		switch w.Chain {
		case ChainEthereum:
			overlay(&w.Address, "ETH_ADDRESS")
			overlay(&w.Endpoint, "ETH_RPC_URL")
			overlay(&w.PrivateKey, "ETH_PRIVATE_KEY")
		case ChainSolana:
			overlay(&w.Address, "SOLANA_WALLET_ADDRESS")
			overlay(&w.Endpoint, "SOLANA_RPC_URL")
			overlay(&w.PrivateKey, "SOLANA_PRIVATE_KEY")
		case ChainCoinbase:
			overlay(&w.Address, "COINBASE_WALLET_ID")
			overlay(&w.APIKey, "COINBASE_API_KEY")
			overlay(&w.APISecret, "COINBASE_API_SECRET")
			overlay(&w.WalletSecret, "COINBASE_WALLET_SECRET")
		}
	}
	overlay(&cfg.HomeAssistant.URL, "HA_URL")
	overlay(&cfg.HomeAssistant.Token, "HA_TOKEN")
	overlay(&cfg.HomeAssistant.EntityID, "HA_ENTITY_ID")
}

// overlay sets *dst from the environment variable when the YAML left it
// empty. Environment wins only for unset fields so explicit config stays
// authoritative.
func overlay(dst *string, key string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func validate(cfg *Config) error {
	if len(cfg.Wallets) == 0 {
		return fmt.Errorf("no wallets configured")
	}
	seen := make(map[string]struct{}, len(cfg.Wallets))
	for _, w := range cfg.Wallets {
		switch w.Chain {
		case ChainEthereum, ChainSolana, ChainCoinbase:
		default:
			return fmt.Errorf("wallet %q: unknown chain %q", w.Name, w.Chain)
		}
		if w.Address == "" {
			return fmt.Errorf("wallet %q: no address configured (set it in YAML or the environment)", w.Name)
		}
		if _, dup := seen[w.Name]; dup {
			return fmt.Errorf("duplicate wallet name %q", w.Name)
		}
		seen[w.Name] = struct{}{}
	}
	return nil
}
