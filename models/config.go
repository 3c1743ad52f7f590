package models

// Config is the full application configuration, decoded by viper.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Links     LinksConfig     `mapstructure:"links"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

// BotConfig holds the Discord connection settings.
type BotConfig struct {
	Token string `mapstructure:"token"`
	// GuildID scopes slash command registration to one guild. Empty registers
	// the commands globally.
	GuildID        string `mapstructure:"guild_id"`
	AdminChannelID string `mapstructure:"admin_channel_id"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3 or postgres
	DSN    string `mapstructure:"dsn"`
}

// LinksConfig controls how public list links are built.
type LinksConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// GRPCConfig configures the admin gRPC endpoint.
type GRPCConfig struct {
	Address        string `mapstructure:"address"`
	MaxConnections int    `mapstructure:"max_connections"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SchedulerConfig holds cron specs for background jobs.
type SchedulerConfig struct {
	AuditSpec string `mapstructure:"audit_spec"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}
