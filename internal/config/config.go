package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "STOREFRONT"

type admin struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type session struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

type order struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	HTTPAddr string  `mapstructure:"http_addr"`
	LogLevel string  `mapstructure:"log_level"`
	SeedFile string  `mapstructure:"seed_file"`
	Admin    admin   `mapstructure:"admin"`
	Session  session `mapstructure:"session"`
	Metrics  metrics `mapstructure:"metrics"`
	Order    order   `mapstructure:"order"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("seed_file", "")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "sneakerparadise2025")
	v.SetDefault("session.secret", "dev-secret")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.token", "")
	v.SetDefault("order.url", "https://instagram.com/sneakerparadise")
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"addr":      "http_addr",
	"log-level": "log_level",
	"seed-file": "seed_file",
}

// RegisterFlags declares the flags Load understands on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("addr", "", "http listen address")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("seed-file", "", "product dataset to seed the catalog with (json or yaml)")
}

// Load resolves the configuration from defaults, an optional config file,
// STOREFRONT_* environment variables and explicitly set flags, in increasing
// order of precedence.
func Load(v *viper.Viper, flags *pflag.FlagSet) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env files when present. Variables already
// set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr: required"))
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("admin: username and password required"))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret: required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl: must be positive"))
	}
	if u, err := url.Parse(c.Order.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("order.url: not an absolute url: %q", c.Order.URL))
	}

	return errors.Join(errs...)
}

// Fields renders the configuration for a startup log line, without secrets.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("http_addr", c.HTTPAddr),
		zap.String("log_level", c.LogLevel),
		zap.String("seed_file", c.SeedFile),
		zap.String("admin_username", c.Admin.Username),
		zap.Duration("session_ttl", c.Session.TTL),
		zap.Bool("metrics_enabled", c.Metrics.Enabled),
		zap.Bool("metrics_token_set", c.Metrics.Token != ""),
		zap.String("order_url", c.Order.URL),
	}
}
