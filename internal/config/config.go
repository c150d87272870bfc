package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ServiceName    = "futures-gateway"
	ServiceVersion = ""
)

var (
	Env *EnvConfig
)

type EnvConfig struct {
	Env                     string              `mapstructure:"env"`
	Log                     LogConfig           `mapstructure:"log"`
	GracefulShutdownTimeout time.Duration       `mapstructure:"graceful_shutdown_timeout"`
	APIKeys                 []APIKeyConfig      `mapstructure:"api_keys"`
	Port                    map[string]string   `mapstructure:"port"`
	Binance                 BinanceConfig       `mapstructure:"binance"`
	Redis                   RedisConfig         `mapstructure:"redis"`
	NatsJetstream           NatsJetstreamConfig `mapstructure:"nats_jetstream"`
	History                 HistoryConfig       `mapstructure:"history"`
}

type APIKeyConfig struct {
	Name      string `mapstructure:"name"`
	Key       string `mapstructure:"key"`
	Active    bool   `mapstructure:"active"`
	ExpiredAt any    `mapstructure:"expired_at"`
}

type NatsJetstreamConfig struct {
	URL             string                   `mapstructure:"url"`
	MaxRetries      int                      `mapstructure:"max_retries"`
	ReconnectFactor float64                  `mapstructure:"reconnect_factor"`
	MinJitter       time.Duration            `mapstructure:"min_jitter"`
	MaxJitter       time.Duration            `mapstructure:"max_jitter"`
	TimeoutHandler  map[string]time.Duration `mapstructure:"timeout_handler"`
}

type LogConfig struct {
	ShowCaller bool   `mapstructure:"show_caller"`
	LogLevel   string `mapstructure:"log_level"`
}

// BinanceConfig carries the venue credentials and transport knobs.
// RecvWindow is in milliseconds and only sent when > 0.
type BinanceConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	BaseURL    string        `mapstructure:"base_url"`
	RecvWindow int64         `mapstructure:"recv_window"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	CacheDSN  string        `mapstructure:"cache_dsn"`
	TickerTTL time.Duration `mapstructure:"ticker_ttl"`
}

type HistoryConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

func LoadConfig(configPath string) error {
	viper.Reset()

	configPath = strings.TrimSpace(configPath)
	if configPath == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
	} else {
		ext := strings.ToLower(filepath.Ext(configPath))
		if ext == ".yml" || ext == ".yaml" {
			viper.SetConfigFile(configPath)
		} else {
			viper.SetConfigName(filepath.Base(configPath))
			viper.SetConfigType("yml")
			configDir := filepath.Dir(configPath)
			if configDir == "." || configDir == "" {
				viper.AddConfigPath(".")
			} else {
				viper.AddConfigPath(configDir)
			}
		}
	}

	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	err = viper.Unmarshal(&Env)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	return nil
}
