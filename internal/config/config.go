package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Dialog   DialogConfig   `mapstructure:"dialog"`
	NLU      NLUConfig      `mapstructure:"nlu"`
	Banking  BankingConfig  `mapstructure:"banking"`
	OTP      OTPConfig      `mapstructure:"otp"`
	Fraud    FraudConfig    `mapstructure:"fraud"`
	Account  AccountConfig  `mapstructure:"account"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	CompanyName string `mapstructure:"company_name"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// DialogConfig bounds multi-turn conversations.
type DialogConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`     // per dialog step
	ConversationTTL time.Duration `mapstructure:"conversation_ttl"` // state expiry
}

// NLUConfig holds intent classification thresholds.
type NLUConfig struct {
	// Minimum score for the rule-based classifier to accept its best intent.
	AcceptThreshold float64 `mapstructure:"accept_threshold"`
	// Minimum cosine similarity for an embedding-backed classifier variant.
	EmbeddingThreshold float64 `mapstructure:"embedding_threshold"`
	DefaultCurrency    string  `mapstructure:"default_currency"`
}

// BankingConfig holds command validation limits.
type BankingConfig struct {
	MinTransferAmount float64 `mapstructure:"min_transfer_amount"`
	MaxTransferAmount float64 `mapstructure:"max_transfer_amount"`
	MaxDailyTransfer  float64 `mapstructure:"max_daily_transfer"`
	WithdrawalMin     float64 `mapstructure:"withdrawal_min"`
	WithdrawalMax     float64 `mapstructure:"withdrawal_max"`
	TopUpMin          float64 `mapstructure:"topup_min"`
	TopUpMax          float64 `mapstructure:"topup_max"`
	// Step-up authentication triggers.
	OTPAmountThreshold float64 `mapstructure:"otp_amount_threshold"`
	OTPRiskThreshold   int     `mapstructure:"otp_risk_threshold"`
}

type OTPConfig struct {
	Length      int           `mapstructure:"length"`
	Validity    time.Duration `mapstructure:"validity"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// FraudConfig holds the additive risk-scoring parameters.
type FraudConfig struct {
	HighAmountThreshold  float64       `mapstructure:"high_amount_threshold"`
	HighAmountPoints     int           `mapstructure:"high_amount_points"`
	VelocityWindow       time.Duration `mapstructure:"velocity_window"`
	VelocityLimit        int           `mapstructure:"velocity_limit"`
	VelocityHighPoints   int           `mapstructure:"velocity_high_points"`
	VelocityMediumPoints int           `mapstructure:"velocity_medium_points"`
	NewBeneficiaryPoints int           `mapstructure:"new_beneficiary_points"`
	NightHighPoints      int           `mapstructure:"night_high_points"`
	NightMediumPoints    int           `mapstructure:"night_medium_points"`
	RoundAmountMin       float64       `mapstructure:"round_amount_min"`
	RoundAmountPoints    int           `mapstructure:"round_amount_points"`
	VelocityExpiry       time.Duration `mapstructure:"velocity_expiry"`
	BeneficiaryExpiry    time.Duration `mapstructure:"beneficiary_expiry"`
	AlertExpiry          time.Duration `mapstructure:"alert_expiry"`
}

// AccountConfig governs calls to the external account API.
type AccountConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/voicebank")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("VOICEBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.host", "VOICEBANK_REDIS_HOST")
	v.BindEnv("redis.port", "VOICEBANK_REDIS_PORT")
	v.BindEnv("redis.password", "VOICEBANK_REDIS_PASSWORD")
	v.BindEnv("database.host", "VOICEBANK_DATABASE_HOST")
	v.BindEnv("database.port", "VOICEBANK_DATABASE_PORT")
	v.BindEnv("database.user", "VOICEBANK_DATABASE_USER")
	v.BindEnv("database.password", "VOICEBANK_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "VOICEBANK_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "VOICEBANK_DATABASE_SSLMODE")
	v.BindEnv("account.base_url", "VOICEBANK_ACCOUNT_BASE_URL")
	v.BindEnv("app.environment", "VOICEBANK_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults plus env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// Default returns a Config populated with defaults only. Used in tests.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "voicebank")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.company_name", "Bafoka")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "voicebank")
	v.SetDefault("database.dbname", "voicebank")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "voicebank:")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.time_format", time.RFC3339)

	v.SetDefault("dialog.max_attempts", 3)
	v.SetDefault("dialog.conversation_ttl", time.Hour)

	v.SetDefault("nlu.accept_threshold", 0.4)
	v.SetDefault("nlu.embedding_threshold", 0.75)
	v.SetDefault("nlu.default_currency", "XAF")

	v.SetDefault("banking.min_transfer_amount", 0.01)
	v.SetDefault("banking.max_transfer_amount", 50000.0)
	v.SetDefault("banking.max_daily_transfer", 10000.0)
	v.SetDefault("banking.withdrawal_min", 500.0)
	v.SetDefault("banking.withdrawal_max", 500000.0)
	v.SetDefault("banking.topup_min", 100.0)
	v.SetDefault("banking.topup_max", 1000000.0)
	v.SetDefault("banking.otp_amount_threshold", 500.0)
	v.SetDefault("banking.otp_risk_threshold", 75)

	v.SetDefault("otp.length", 6)
	v.SetDefault("otp.validity", 5*time.Minute)
	v.SetDefault("otp.max_attempts", 3)

	v.SetDefault("fraud.high_amount_threshold", 1000.0)
	v.SetDefault("fraud.high_amount_points", 30)
	v.SetDefault("fraud.velocity_window", 10*time.Minute)
	v.SetDefault("fraud.velocity_limit", 3)
	v.SetDefault("fraud.velocity_high_points", 40)
	v.SetDefault("fraud.velocity_medium_points", 20)
	v.SetDefault("fraud.new_beneficiary_points", 20)
	v.SetDefault("fraud.night_high_points", 15)
	v.SetDefault("fraud.night_medium_points", 10)
	v.SetDefault("fraud.round_amount_min", 500.0)
	v.SetDefault("fraud.round_amount_points", 10)
	v.SetDefault("fraud.velocity_expiry", time.Hour)
	v.SetDefault("fraud.beneficiary_expiry", 90*24*time.Hour)
	v.SetDefault("fraud.alert_expiry", 30*24*time.Hour)

	// Empty means no external account backend; the server then runs on the
	// built-in mock.
	v.SetDefault("account.base_url", "")
	v.SetDefault("account.timeout", 5*time.Second)
	v.SetDefault("account.max_retries", 2)
}
