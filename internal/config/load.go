package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "REALTORIST"

// Load reads configuration from defaults, an optional config.yaml in the
// working directory (or the file named by REALTORIST_CONFIG_FILE) and
// environment variables, then validates the result.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper already knows about, so keys without
	// defaults have to be bound explicitly.
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"auth.admin_email",
		"auth.admin_password",
		"llm.gemini_api_key",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.Jobs.Location(); err != nil {
		return nil, fmt.Errorf("config validation failed: unknown timezone %q: %w", cfg.Jobs.Timezone, err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 30)

	v.SetDefault("auth.token_lifetime_minutes", 24*60)

	v.SetDefault("task.queue_capacity", 256)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.timezone", "UTC")
	v.SetDefault("jobs.listing_update_cron", "* * * * *")
	v.SetDefault("jobs.events_cleanup_cron", "0 0 * * *")

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 2)
}
