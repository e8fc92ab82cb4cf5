package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Lark       LarkConfig       `mapstructure:"lark"`
	Allowance  AllowanceConfig  `mapstructure:"allowance"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LarkConfig holds Lark notification configuration. When disabled, decisions
// still land; nobody gets pinged.
type LarkConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	AppID           string            `mapstructure:"app_id"`
	AppSecret       string            `mapstructure:"app_secret"`
	ApproverOpenIDs map[string]string `mapstructure:"approver_open_ids"`
}

// AllowanceConfig holds the approval threshold and the short-day pro-ration
// policy applied by the rate source.
type AllowanceConfig struct {
	CEOThreshold          string `mapstructure:"ceo_threshold"`
	ProrationThresholdHrs string `mapstructure:"proration_threshold_hours"`
	ProrationFactor       string `mapstructure:"proration_factor"`
}

// SettlementConfig holds settlement statement configuration
type SettlementConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	CompanyName string `mapstructure:"company_name"`
}

// StorageConfig holds receipt storage configuration
type StorageConfig struct {
	ReceiptDir string `mapstructure:"receipt_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/traveldesk.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Lark defaults
	viper.SetDefault("lark.enabled", false)

	// Allowance defaults: a day under 12 hours earns half rates.
	viper.SetDefault("allowance.ceo_threshold", "200000")
	viper.SetDefault("allowance.proration_threshold_hours", "12")
	viper.SetDefault("allowance.proration_factor", "0.5")

	// Settlement defaults
	viper.SetDefault("settlement.output_dir", "data/statements")
	viper.SetDefault("settlement.company_name", "TravelDesk")

	// Storage defaults
	viper.SetDefault("storage.receipt_dir", "data/receipts")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("settlement.company_name", "COMPANY_NAME")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required when lark is enabled")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required when lark is enabled")
		}
	}

	for name, raw := range map[string]string{
		"allowance.ceo_threshold":             c.Allowance.CEOThreshold,
		"allowance.proration_threshold_hours": c.Allowance.ProrationThresholdHrs,
		"allowance.proration_factor":          c.Allowance.ProrationFactor,
	} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("%s: invalid decimal %q", name, raw)
		}
	}

	if c.Settlement.CompanyName == "" {
		return fmt.Errorf("settlement.company_name is required")
	}

	return nil
}

// CEOThresholdDecimal returns the approval threshold as a decimal. Validate
// has already checked the string parses.
func (c *AllowanceConfig) CEOThresholdDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.CEOThreshold)
}

// ProrationThresholdDecimal returns the short-day threshold in hours.
func (c *AllowanceConfig) ProrationThresholdDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.ProrationThresholdHrs)
}

// ProrationFactorDecimal returns the short-day pro-ration factor.
func (c *AllowanceConfig) ProrationFactorDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.ProrationFactor)
}
