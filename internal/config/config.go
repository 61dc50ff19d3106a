// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	RPCList       []string `mapstructure:"rpc_list"`
	WebSocketURL  string   `mapstructure:"websocket_url"`
	Commitment    string   `mapstructure:"commitment"`
	MaxRetries    int      `mapstructure:"max_retries"`
	RetryDelayMs  int      `mapstructure:"retry_delay_ms"`
	DatasetDir    string   `mapstructure:"dataset_dir"`
	DatasetFormat string   `mapstructure:"dataset_format"`
	DebugLogging  bool     `mapstructure:"debug_logging"`
}

const (
	DefaultCommitment    = "confirmed"
	DefaultMaxRetries    = 5
	DefaultRetryDelayMs  = 1500
	DefaultDatasetDir    = "data"
	DefaultDatasetFormat = "csv"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"commitment":     DefaultCommitment,
		"max_retries":    DefaultMaxRetries,
		"retry_delay_ms": DefaultRetryDelayMs,
		"dataset_dir":    DefaultDatasetDir,
		"dataset_format": DefaultDatasetFormat,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	if cfg.WebSocketURL == "" {
		return errors.New("missing websocket_url in configuration")
	}
	if err := validateURLWithCache(cfg.WebSocketURL, "ws"); err != nil {
		return errors.New("invalid WebSocket URL protocol")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return errors.New("invalid commitment level")
	}
	switch cfg.DatasetFormat {
	case "csv", "json":
	default:
		return errors.New("invalid dataset_format")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.MaxRetries <= 0 {
		return errors.New("invalid max_retries")
	}
	if cfg.RetryDelayMs <= 0 {
		return errors.New("invalid retry_delay_ms")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	cacheKey := protocol + "|" + rawURL
	if _, ok := urlCache.Load(cacheKey); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(cacheKey, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("PUMPFUN_COLLECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}

	envWSS := v.GetString("WSS_URL")
	if envWSS != "" {
		cfg.WebSocketURL = envWSS
	}
	return nil
}
