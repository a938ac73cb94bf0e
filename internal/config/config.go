package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
// Each component receives only the group it owns at startup; there is no
// process-wide configuration singleton.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Broker    BrokerConfig    `mapstructure:"broker"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains token signing settings. The signing key and
// algorithm are fixed for the process lifetime.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// SchedulerConfig controls the daily deadline check: the local trigger
// time, its timezone, and the due-date window scanned on each run.
type SchedulerConfig struct {
	Hour           int    `mapstructure:"hour"            validate:"gte=0,lte=23"`
	Minute         int    `mapstructure:"minute"          validate:"gte=0,lte=59"`
	Timezone       string `mapstructure:"timezone"        validate:"required"`
	LookbackHours  int    `mapstructure:"lookback_hours"  validate:"gt=0"`
	LookaheadHours int    `mapstructure:"lookahead_hours" validate:"gt=0"`
}

// BrokerConfig points at the message broker used for deadline
// notifications. An empty URL disables publishing; alerts are then only
// logged.
type BrokerConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}
