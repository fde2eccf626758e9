package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerAddr     string
	AllowedOrigins []string
	ReapGrace      time.Duration
}

// Load builds the config from defaults and POINTDECK_* environment
// variables. Values passed as non-zero arguments (typically flags)
// override both.
func Load(serverAddr string, allowedOrigins []string, reapGrace time.Duration) (*Config, error) {
	v := viper.New()
	v.SetDefault("server_addr", "localhost:8000")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("reap_grace", "30s")

	v.SetEnvPrefix("pointdeck")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if serverAddr != "" {
		v.Set("server_addr", serverAddr)
	}
	if len(allowedOrigins) > 0 {
		v.Set("allowed_origins", allowedOrigins)
	}
	if reapGrace > 0 {
		v.Set("reap_grace", reapGrace.String())
	}

	grace, err := time.ParseDuration(v.GetString("reap_grace"))
	if err != nil {
		return nil, fmt.Errorf("parse reap_grace: %w", err)
	}

	return NewConfig(v.GetString("server_addr"), v.GetStringSlice("allowed_origins"), grace)
}

func NewConfig(serverAddr string, allowedOrigins []string, reapGrace time.Duration) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if reapGrace <= 0 {
		return nil, fmt.Errorf("reap grace must be positive")
	}

	return &Config{
		ServerAddr:     serverAddr,
		AllowedOrigins: allowedOrigins,
		ReapGrace:      reapGrace,
	}, nil
}
