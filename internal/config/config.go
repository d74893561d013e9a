// Package config loads CLI configuration from file, environment, and flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. ASAR_OUTPUT_DIR.
const EnvPrefix = "ASAR"

// FileName is the config file name searched for, without extension.
const FileName = "asar"

// Config is the resolved CLI configuration.
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	S3       S3Config       `mapstructure:"s3"`
	Registry RegistryConfig `mapstructure:"registry"`
	Server   ServerConfig   `mapstructure:"server"`
	Convert  ConvertConfig  `mapstructure:"convert"`
	Log      LogConfig      `mapstructure:"log"`
}

// OutputConfig configures the local directory sink.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// S3Config configures the S3 sink. An empty bucket disables it.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// RegistryConfig configures registry pushes. An empty namespace disables
// the registry sink; explicit pushes still use the credentials.
type RegistryConfig struct {
	Namespace string `mapstructure:"namespace"`
	Tag       string `mapstructure:"tag"`
	PlainHTTP bool   `mapstructure:"plain_http"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ConvertConfig configures batch conversion.
type ConvertConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment binding set
// up. Flags can be bound to it before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", ".")

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")

	v.SetDefault("registry.namespace", "")
	v.SetDefault("registry.tag", "latest")
	v.SetDefault("registry.plain_http", false)
	v.SetDefault("registry.username", "")
	v.SetDefault("registry.password", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", 8<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("convert.concurrency", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads cfgFile, or asar.yaml from the working directory and
// $HOME/.config/asar when cfgFile is empty, and resolves the configuration.
// A missing config file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "asar"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Convert.Concurrency < 1 {
		return fmt.Errorf("convert.concurrency must be at least 1, got %d", c.Convert.Concurrency)
	}
	if c.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.S3.Bucket == "" && c.S3.Prefix != "" {
		return errors.New("s3.prefix set without s3.bucket")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds the CLI logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
