package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Payments PaymentsConfig `mapstructure:"payments" validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// CORSAllowedOrigins lists the dashboard origins allowed to call the API.
	// An empty list disables the CORS middleware.
	CORSAllowedOrigins     []string `mapstructure:"cors_allowed_origins"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// PaymentsConfig selects and configures the payment provider.
type PaymentsConfig struct {
	Provider            string `mapstructure:"provider"              validate:"required,oneof=stripe manual"`
	StripeSecretKey     string `mapstructure:"stripe_secret_key"     validate:"required_if=Provider stripe"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret" validate:"required_if=Provider stripe"`
	Currency            string `mapstructure:"currency"              validate:"required,len=3"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount                     int `mapstructure:"worker_count"                       validate:"gt=0"`
	QueueSize                       int `mapstructure:"queue_size"                         validate:"gt=0"`
	StuckTaskAgeMinutes             int `mapstructure:"stuck_task_age_minutes"             validate:"gt=0"`
	MembershipSweepIntervalMinutes int `mapstructure:"membership_sweep_interval_minutes" validate:"gt=0"`
}
