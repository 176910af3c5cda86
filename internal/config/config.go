package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const envPrefix = "WRAPPED"

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	HTTPAddr string        `mapstructure:"http_addr"`
	Timeout  time.Duration `mapstructure:"timeout"`

	Blockscout BlockscoutConfig `mapstructure:"blockscout"`
	Covalent   CovalentConfig   `mapstructure:"covalent"`
	CoinGecko  CoinGeckoConfig  `mapstructure:"coingecko"`
	Cache      CacheConfig      `mapstructure:"cache"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	MinIO      MinIOConfig      `mapstructure:"minio"`

	// Names is a static address book of display names.
	Names map[string]string `mapstructure:"names"`
}

type BlockscoutConfig struct {
	URL string  `mapstructure:"url"`
	RPS float64 `mapstructure:"rps"`
	// MaxPages caps how many listing pages are followed per stream.
	MaxPages int `mapstructure:"max_pages"`
}

// CovalentConfig is only used when both URL and APIKey are set.
type CovalentConfig struct {
	URL    string  `mapstructure:"url"`
	APIKey string  `mapstructure:"api_key"`
	RPS    float64 `mapstructure:"rps"`
}

type CoinGeckoConfig struct {
	URL string `mapstructure:"url"`
}

type CacheConfig struct {
	StatsTTL      time.Duration `mapstructure:"stats_ttl"`
	WrappedTTL    time.Duration `mapstructure:"wrapped_ttl"`
	Capacity      int           `mapstructure:"capacity"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

type ClickHouseConfig struct {
	Addr     []string `mapstructure:"addr"`
	Database string   `mapstructure:"database"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("timeout", 15*time.Second)

	v.SetDefault("blockscout.url", "https://base.blockscout.com")
	v.SetDefault("blockscout.rps", 5)
	v.SetDefault("blockscout.max_pages", 20)
	v.SetDefault("covalent.url", "https://api.covalenthq.com")
	v.SetDefault("covalent.api_key", "")
	v.SetDefault("covalent.rps", 4)
	v.SetDefault("coingecko.url", "https://api.coingecko.com/api/v3")

	v.SetDefault("cache.stats_ttl", 5*time.Minute)
	v.SetDefault("cache.wrapped_ttl", 6*time.Hour)
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("clickhouse.addr", []string{})
	v.SetDefault("clickhouse.database", "default")
	v.SetDefault("clickhouse.username", "default")
	v.SetDefault("clickhouse.password", "")

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "wrapped-reports")
	v.SetDefault("minio.use_ssl", false)
}

// Load reads configuration from path, or from config.yaml in ./config or the
// working directory when path is empty, and lets WRAPPED_* environment
// variables override any key (WRAPPED_BLOCKSCOUT_URL for blockscout.url).
// A missing default config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that at least one transaction provider is usable and that
// durations and limits are sane.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http_addr is empty", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.Blockscout.URL == "" && !c.CovalentEnabled() {
		return fmt.Errorf("%w: no transaction provider configured", ErrInvalidConfig)
	}
	if c.Blockscout.URL != "" && c.Blockscout.RPS <= 0 {
		return fmt.Errorf("%w: blockscout.rps must be positive", ErrInvalidConfig)
	}
	if c.Blockscout.URL != "" && c.Blockscout.MaxPages <= 0 {
		return fmt.Errorf("%w: blockscout.max_pages must be positive", ErrInvalidConfig)
	}
	if c.CovalentEnabled() && c.Covalent.RPS <= 0 {
		return fmt.Errorf("%w: covalent.rps must be positive", ErrInvalidConfig)
	}
	if c.Cache.StatsTTL < 0 || c.Cache.WrappedTTL < 0 {
		return fmt.Errorf("%w: cache TTLs must not be negative", ErrInvalidConfig)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("%w: cache.capacity must be positive", ErrInvalidConfig)
	}
	if c.MinIOEnabled() && c.MinIO.Bucket == "" {
		return fmt.Errorf("%w: minio.bucket is empty", ErrInvalidConfig)
	}
	return nil
}

func (c Config) CovalentEnabled() bool {
	return c.Covalent.URL != "" && c.Covalent.APIKey != ""
}

func (c Config) RedisEnabled() bool {
	return c.Cache.RedisAddr != ""
}

func (c Config) ClickHouseEnabled() bool {
	return len(c.ClickHouse.Addr) > 0
}

func (c Config) MinIOEnabled() bool {
	return c.MinIO.Endpoint != ""
}
