package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`

	// Feeds lists the MLS feeds polled by the listing update job.
	// Feeds are only read from the config file.
	Feeds []FeedConfig `mapstructure:"feeds" validate:"dive"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// ShutdownTimeout returns the graceful shutdown budget as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains admin authentication settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// AdminEmail and AdminPassword seed the admin account on first start.
	// They are ignored once the account exists.
	AdminEmail    string `mapstructure:"admin_email"    validate:"omitempty,email"`
	AdminPassword string `mapstructure:"admin_password" validate:"omitempty,min=8,max=72"`
}

// TaskConfig contains background task queue settings.
type TaskConfig struct {
	// QueueCapacity bounds the number of pending background tasks.
	QueueCapacity int `mapstructure:"queue_capacity" validate:"required,gt=0,lte=10000"`
}

// JobsConfig contains cron job settings.
type JobsConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Timezone          string `mapstructure:"timezone"            validate:"required"`
	ListingUpdateCron string `mapstructure:"listing_update_cron" validate:"required"`
	EventsCleanupCron string `mapstructure:"events_cleanup_cron" validate:"required"`
}

// Location resolves the configured time zone.
func (c JobsConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LLMConfig contains settings for generated listing descriptions.
// Leaving GeminiAPIKey empty disables the feature.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// FeedConfig describes one listing feed.
type FeedConfig struct {
	ListingSource string `mapstructure:"listing_source" validate:"required,ne=user"`
	URL           string `mapstructure:"url"            validate:"required,url"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
}
