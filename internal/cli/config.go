package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration of the hookbridge binary.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Site     SiteConfig     `mapstructure:"site"`
	Content  ContentConfig  `mapstructure:"content"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AdminToken      string        `mapstructure:"admin_token"`
	RateLimit       int           `mapstructure:"rate_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and configures the settings and delivery-log backend.
type StoreConfig struct {
	Driver string      `mapstructure:"driver"` // memory, redis or sqlite
	Path   string      `mapstructure:"path"`   // sqlite database file
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// SiteConfig is the site identity placed in every envelope.
type SiteConfig struct {
	Name       string `mapstructure:"name"`
	URL        string `mapstructure:"url"`
	AdminEmail string `mapstructure:"admin_email"`
	Version    string `mapstructure:"version"`
	Language   string `mapstructure:"language"`
}

// ContentConfig configures the built-in content repository.
type ContentConfig struct {
	Fixtures string `mapstructure:"fixtures"`
}

// DispatchConfig maps onto hookbridge.Config.
type DispatchConfig struct {
	TriggerTimeout    time.Duration `mapstructure:"trigger_timeout"`
	APITimeout        time.Duration `mapstructure:"api_timeout"`
	StrictStatusCheck bool          `mapstructure:"strict_status_check"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "./hookbridge.db")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("site.name", "")
	v.SetDefault("site.url", "http://localhost")
	v.SetDefault("site.admin_email", "")
	v.SetDefault("site.version", "")
	v.SetDefault("site.language", "en-US")
	v.SetDefault("content.fixtures", "")
	v.SetDefault("dispatch.trigger_timeout", 15*time.Second)
	v.SetDefault("dispatch.api_timeout", 30*time.Second)
	v.SetDefault("dispatch.strict_status_check", false)
}

// LoadConfig reads defaults, the YAML file at path (or ./hookbridge.yaml when
// path is empty and the file exists) and HOOKBRIDGE_* environment variables,
// in increasing precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HOOKBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hookbridge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// loadEnvFile loads dotenv variables without overriding the environment. A
// missing file is only an error when it was asked for explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
