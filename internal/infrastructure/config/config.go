package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 儲存 HTTP API 及外部相依的執行設定。
type Config struct {
	HTTP HTTPConfig `yaml:"http"`
	DB   DBConfig   `yaml:"db"`
	Auth AuthConfig `yaml:"auth"`
	Push PushConfig `yaml:"push"`
	Feed FeedConfig `yaml:"feed"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DBConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type AuthConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
	Secret   string        `yaml:"secret"`
}

// PushConfig 控制推播閘道與扇出行為。
type PushConfig struct {
	GatewayURL      string        `yaml:"gateway_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	Concurrency     int           `yaml:"concurrency"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
	QueueSize       int           `yaml:"queue_size"`
}

// FeedConfig 控制訊號變更 feed 的連線。
type FeedConfig struct {
	URL          string        `yaml:"url"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	ReconnectMin time.Duration `yaml:"reconnect_min"`
	ReconnectMax time.Duration `yaml:"reconnect_max"`
}

// LoadFromFile 從 YAML 組態檔載入設定。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 5
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 2
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 15 * time.Minute
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 30 * time.Minute
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = "dev-secret-change-me"
	}
	if cfg.Push.RequestTimeout == 0 {
		cfg.Push.RequestTimeout = 10 * time.Second
	}
	if cfg.Push.Concurrency == 0 {
		cfg.Push.Concurrency = 8
	}
	if cfg.Push.DispatchTimeout == 0 {
		cfg.Push.DispatchTimeout = 30 * time.Second
	}
	if cfg.Push.QueueSize == 0 {
		cfg.Push.QueueSize = 64
	}
	if cfg.Feed.ReadTimeout == 0 {
		cfg.Feed.ReadTimeout = time.Minute
	}
	if cfg.Feed.ReconnectMin == 0 {
		cfg.Feed.ReconnectMin = time.Second
	}
	if cfg.Feed.ReconnectMax == 0 {
		cfg.Feed.ReconnectMax = 30 * time.Second
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("HTTP_ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.HTTP.Addr = ":" + val
	}
	if val := os.Getenv("DB_DSN"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("AUTH_SECRET"); val != "" {
		cfg.Auth.Secret = val
	}
	if val := os.Getenv("PUSH_GATEWAY_URL"); val != "" {
		cfg.Push.GatewayURL = val
	}
	if val := os.Getenv("PUSH_CONCURRENCY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Push.Concurrency = n
		}
	}
	if val := os.Getenv("PUSH_DISPATCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Push.DispatchTimeout = d
		}
	}
	if val := os.Getenv("FEED_URL"); val != "" {
		cfg.Feed.URL = val
	}
	return cfg
}
