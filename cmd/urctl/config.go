package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mdzio/go-logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logging.Get("urctl")

// config is merged from defaults, config file, UR_* environment variables and
// flags (in increasing priority).
type config struct {
	Host    string        `mapstructure:"host"`
	Timeout time.Duration `mapstructure:"timeout"`
	Log     string        `mapstructure:"log"`
	Rate    float64       `mapstructure:"rate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("log", "WARNING")
	v.SetDefault("rate", 50.0)
}

func loadConfig(cmd *cobra.Command) (*config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("UR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("Reading of config file %s failed: %w", configFile, err)
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("Invalid configuration: %w", err)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("Invalid configuration: no host")
	}
	log.Debugf("Configuration: host %s, timeout %v, rate %v", cfg.Host, cfg.Timeout, cfg.Rate)
	return &cfg, nil
}

// applyLogLevel configures the logging of all packages.
func applyLogLevel(level string) error {
	var l logging.LogLevel
	if err := l.Set(level); err != nil {
		return fmt.Errorf("Invalid log level %s: %w", level, err)
	}
	logging.SetLevel(l)
	return nil
}
