package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	NodeID    string
	HTTPPort  int
	Debug     bool
	LogLevel  string
	LogFormat string

	DataDir           string
	StoreBackend      string
	StrictTransitions bool
	SeedFile          string

	ShutdownTimeout time.Duration
	WSWriteTimeout  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("node_id", "provider-default")
	v.SetDefault("http_port", 8000)
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("store.backend", "badger")
	v.SetDefault("strict_transitions", false)
	v.SetDefault("seed_file", "")
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("ws_write_timeout", 5*time.Second)
}

// Load reads configuration from defaults, an optional YAML file and TREGO_*
// environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("trego")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		NodeID:            v.GetString("node_id"),
		HTTPPort:          v.GetInt("http_port"),
		Debug:             v.GetBool("debug"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		DataDir:           v.GetString("data_dir"),
		StoreBackend:      v.GetString("store.backend"),
		StrictTransitions: v.GetBool("strict_transitions"),
		SeedFile:          v.GetString("seed_file"),
		ShutdownTimeout:   v.GetDuration("shutdown_timeout"),
		WSWriteTimeout:    v.GetDuration("ws_write_timeout"),
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
