package config

import (
	"fmt"
	"time"

	"onboarder/internal/domain"

	"github.com/bwmarrin/snowflake"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Discord              DiscordConfig
	Database             DatabaseConfig    `envPrefix:"DB_"`
	Roles                RolesConfig       `envPrefix:"ROLE_"`
	ProductRoles         map[string]string `env:"PRODUCT_ROLES" envSeparator:"," envKeyValSeparator:":"`
	MigrationsURL        string            `env:"MIGRATIONS_URL" envDefault:"file://migrations"`
	RejoinKeyword        string            `env:"REJOIN_KEYWORD" envDefault:"yikes"`
	RegistrationCacheTTL time.Duration     `env:"REGISTRATION_CACHE_TTL" envDefault:"5m"`
	Delivery             DeliveryConfig    `envPrefix:"DELIVERY_"`
	Audit                AuditConfig       `envPrefix:"AUDIT_LOG_"`
	Telegram             TelegramConfig    `envPrefix:"TELEGRAM_"`
	Log                  LogConfig         `envPrefix:"LOG_"`
}

// DiscordConfig holds the bot credentials and the guild it onboards into
type DiscordConfig struct {
	Token          string `env:"DISCORD_TOKEN"`
	GuildID        string `env:"DISCORD_GUILD_ID"`
	AttachmentsDir string `env:"ATTACHMENTS_DIR" envDefault:"files"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME" envDefault:"onboarder"`
	User     string `env:"USER" envDefault:"onboarder"`
	Password string `env:"PASSWORD"`
}

// RolesConfig holds the guild role ids granted during onboarding
type RolesConfig struct {
	GraduateCohort             string `env:"GRADUATE_COHORT" envDefault:"828216337158766633"`
	ProgrammingCourse          string `env:"PROGRAMMING_COURSE"`
	AutonomousSystems          string `env:"AUTONOMOUS_SYSTEMS" envDefault:"813676488909258802"`
	DistributedSoftwareSystems string `env:"DISTRIBUTED_SOFTWARE_SYSTEMS" envDefault:"813676488876228636"`
	General                    string `env:"GENERAL" envDefault:"813676488876228637"`
	InternetAndWebbasedSystems string `env:"INTERNET_AND_WEBBASED_SYSTEMS" envDefault:"813676488876228634"`
	ITSecurity                 string `env:"IT_SECURITY" envDefault:"813676488876228635"`
	VisualComputing            string `env:"VISUAL_COMPUTING" envDefault:"813676488876228633"`
}

// DeliveryConfig bounds retries of platform calls
type DeliveryConfig struct {
	MaxTries        uint          `env:"MAX_TRIES" envDefault:"5"`
	InitialInterval time.Duration `env:"INITIAL_INTERVAL" envDefault:"500ms"`
	MaxInterval     time.Duration `env:"MAX_INTERVAL" envDefault:"10s"`
	EventTimeout    time.Duration `env:"EVENT_TIMEOUT" envDefault:"2m"`
}

// AuditConfig controls the rotating audit file
type AuditConfig struct {
	Pattern      string        `env:"PATTERN" envDefault:"logs/audit.%Y%m%d.log"`
	LinkName     string        `env:"LINK" envDefault:"logs/audit.log"`
	MaxAge       time.Duration `env:"MAX_AGE" envDefault:"720h"`
	RotationTime time.Duration `env:"ROTATION_TIME" envDefault:"24h"`
}

// TelegramConfig holds the operator alert chat, alerts are off without a token
type TelegramConfig struct {
	Token  string `env:"TOKEN"`
	ChatID int64  `env:"CHAT_ID"`
	APIURL string `env:"API_URL"`
}

// Enabled reports whether operator alerts are configured
func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

// LogConfig controls the process logger
type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
	Dev   bool   `env:"DEV"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	return parse(env.Options{})
}

// LoadFrom reads configuration from environ instead of the process environment
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and id formats
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if err := validID("DISCORD_GUILD_ID", c.Discord.GuildID, true); err != nil {
		return err
	}

	roles := map[string]string{
		"ROLE_GRADUATE_COHORT":               c.Roles.GraduateCohort,
		"ROLE_PROGRAMMING_COURSE":            c.Roles.ProgrammingCourse,
		"ROLE_AUTONOMOUS_SYSTEMS":            c.Roles.AutonomousSystems,
		"ROLE_DISTRIBUTED_SOFTWARE_SYSTEMS":  c.Roles.DistributedSoftwareSystems,
		"ROLE_GENERAL":                       c.Roles.General,
		"ROLE_INTERNET_AND_WEBBASED_SYSTEMS": c.Roles.InternetAndWebbasedSystems,
		"ROLE_IT_SECURITY":                   c.Roles.ITSecurity,
		"ROLE_VISUAL_COMPUTING":              c.Roles.VisualComputing,
	}
	for key, id := range roles {
		if err := validID(key, id, false); err != nil {
			return err
		}
	}
	for product, id := range c.ProductRoles {
		if err := validID("PRODUCT_ROLES["+product+"]", id, true); err != nil {
			return err
		}
	}

	if c.Telegram.Enabled() && c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	if c.Delivery.MaxTries == 0 {
		return fmt.Errorf("DELIVERY_MAX_TRIES must be positive")
	}
	return nil
}

func validID(key, id string, required bool) error {
	if id == "" {
		if required {
			return fmt.Errorf("%s is required", key)
		}
		return nil
	}
	if _, err := snowflake.ParseString(id); err != nil {
		return fmt.Errorf("%s is not a valid id: %q", key, id)
	}
	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// ProgramRoles maps every study program to its configured role
func (c *Config) ProgramRoles() map[domain.Program]domain.RoleID {
	return map[domain.Program]domain.RoleID{
		domain.ProgramAutonomousSystems:          domain.RoleID(c.Roles.AutonomousSystems),
		domain.ProgramDistributedSoftwareSystems: domain.RoleID(c.Roles.DistributedSoftwareSystems),
		domain.ProgramGeneral:                    domain.RoleID(c.Roles.General),
		domain.ProgramInternetAndWebbasedSystems: domain.RoleID(c.Roles.InternetAndWebbasedSystems),
		domain.ProgramITSecurity:                 domain.RoleID(c.Roles.ITSecurity),
		domain.ProgramVisualComputing:            domain.RoleID(c.Roles.VisualComputing),
	}
}

// ProductRoleIDs maps the configured non-graduate products to their roles
func (c *Config) ProductRoleIDs() map[domain.Product]domain.RoleID {
	out := make(map[domain.Product]domain.RoleID, len(c.ProductRoles))
	for product, id := range c.ProductRoles {
		out[domain.Product(product)] = domain.RoleID(id)
	}
	return out
}
