package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const DefaultJWTSecret = "change-me-in-production"

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/decision-brain")
	}

	v.SetEnvPrefix("BRAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	// Hosting platforms inject PORT; it wins over file and defaults.
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		v.Set("api.port", p)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "decision-brain")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "30s")

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 600)
	v.SetDefault("api.max_body_bytes", 1<<20)
	v.SetDefault("api.auth.enabled", false)
	v.SetDefault("api.auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("api.auth.jwt_issuer", "decision-brain")
	v.SetDefault("api.auth.jwt_duration", "24h")
	v.SetDefault("api.cors.allowed_origins", []string{"*"})

	// WebSocket defaults
	v.SetDefault("websocket.ping_interval", "54s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.max_message_size", 512)
	v.SetDefault("websocket.client_buffer", 256)
	v.SetDefault("websocket.broadcast_buffer", 256)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)

	// Audit defaults
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.buffer_size", 256)
	v.SetDefault("audit.write_timeout", "5s")
	v.SetDefault("audit.breaker_failures", 5)
	v.SetDefault("audit.breaker_cooldown", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "decision_brain")
	v.SetDefault("database.user", "brain")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.ssl_mode", "disable")

	// Events defaults
	v.SetDefault("events.buffer_size", 100)
}
