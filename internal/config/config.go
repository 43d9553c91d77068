package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vicuna-trace/ledger/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m"
}

// NATSConfig holds NATS JetStream configuration.
// An empty URL disables event publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// EthereumConfig holds the chain the tokenization contract lives on
type EthereumConfig struct {
	RPCURL  string `mapstructure:"rpc_url"`
	ChainID string `mapstructure:"chain_id"` // "11155111" or "eip155:11155111"
	// ContractAddress is the address of the tokenization contract
	ContractAddress     string        `mapstructure:"contract_address"`
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
	// MaxConfirmationTimeout caps per-request timeouts; it must stay below reconciler.stale_after
	MaxConfirmationTimeout time.Duration `mapstructure:"max_confirmation_timeout"`
	ReceiptPollInterval    time.Duration `mapstructure:"receipt_poll_interval"`
}

// Network parses ChainID
func (c EthereumConfig) Network() (domain.NetworkID, error) {
	return domain.ParseNetworkID(c.ChainID)
}

// WalletConfig holds the signing account.
// KeystoreDir takes precedence over PrivateKey when both are set.
type WalletConfig struct {
	KeystoreDir string `mapstructure:"keystore_dir"`
	Account     string `mapstructure:"account"`
	Passphrase  string `mapstructure:"passphrase"`
	PrivateKey  string `mapstructure:"private_key"`
	// Recipient overrides the token recipient; the signing account receives the token when empty
	Recipient string `mapstructure:"recipient"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// AllowedOrigins restricts CORS; empty allows every origin
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// RateLimitConfig budgets mint and recheck requests per caller.
// An empty RedisAddr disables rate limiting.
type RateLimitConfig struct {
	RedisAddr           string `mapstructure:"redis_addr"`
	RedisPassword       string `mapstructure:"redis_password"`
	RedisDB             int    `mapstructure:"redis_db"`
	RedisKeyPrefix      string `mapstructure:"redis_key_prefix"`
	RequestsPerMinute   int    `mapstructure:"requests_per_minute"`
	Burst               int    `mapstructure:"burst"`
	EnableLocalFallback bool   `mapstructure:"enable_local_fallback"`
}

// ResolverConfig holds origin resolution options
type ResolverConfig struct {
	RequireTransformationDestination bool `mapstructure:"require_transformation_destination"`
}

// ReconcilerConfig holds configuration for the pending mint sweeper
type ReconcilerConfig struct {
	BatchSize int           `mapstructure:"batch_size"`
	PoolSize  int           `mapstructure:"pool_size"`
	Interval  time.Duration `mapstructure:"interval"`
	// StaleAfter is how long an attempt must sit in a pending state before it is rechecked
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Ethereum   EthereumConfig  `mapstructure:"ethereum"`
	Wallet     WalletConfig    `mapstructure:"wallet"`
	NATS       NATSConfig      `mapstructure:"nats"`
	Resolver   ResolverConfig  `mapstructure:"resolver"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

// ReconcilerServiceConfig holds configuration for the reconciler program
type ReconcilerServiceConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
}

// TokenctlConfig holds configuration for the operator CLI
type TokenctlConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Resolver   ResolverConfig `mapstructure:"resolver"`
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

func setEthereumDefaults(v *viper.Viper) {
	v.SetDefault("ethereum.chain_id", domain.NetworkEthereumSepolia.String())
	v.SetDefault("ethereum.confirmation_timeout", "2m")
	v.SetDefault("ethereum.max_confirmation_timeout", "4m")
	v.SetDefault("ethereum.receipt_poll_interval", "2s")
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.stream_name", "TOKENIZATION_EVENTS")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
}

// readConfig reads the config file, tolerating its absence so env-only deployments work
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	// mint requests block until confirmation
	v.SetDefault("server.write_timeout", 300)
	v.SetDefault("server.idle_timeout", 120)
	setDatabaseDefaults(v)
	setEthereumDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("nats.connection_name", "vicuna-api")
	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("rate_limit.enable_local_fallback", true)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := cfg.Ethereum.Network(); err != nil {
		return nil, fmt.Errorf("ethereum.chain_id: %w", err)
	}
	if cfg.Ethereum.ConfirmationTimeout > cfg.Ethereum.MaxConfirmationTimeout {
		return nil, errors.New("ethereum.confirmation_timeout must not exceed ethereum.max_confirmation_timeout")
	}

	return &cfg, nil
}

// LoadReconcilerConfig loads configuration for the reconciler program
func LoadReconcilerConfig(configFile string, envPath string) (*ReconcilerServiceConfig, error) {
	v := configureViper("reconciler", configFile, envPath)

	setDatabaseDefaults(v)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	setEthereumDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("nats.connection_name", "vicuna-reconciler")
	v.SetDefault("reconciler.batch_size", 50)
	v.SetDefault("reconciler.pool_size", 4)
	v.SetDefault("reconciler.interval", "1m")
	v.SetDefault("reconciler.stale_after", "5m")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg ReconcilerServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}
	if cfg.Ethereum.RPCURL == "" {
		return nil, errors.New("ethereum.rpc_url is required")
	}
	if _, err := cfg.Ethereum.Network(); err != nil {
		return nil, fmt.Errorf("ethereum.chain_id: %w", err)
	}
	// attempts still waiting in the API must not be re-checked
	if cfg.Reconciler.StaleAfter <= cfg.Ethereum.MaxConfirmationTimeout {
		return nil, errors.New("reconciler.stale_after must exceed ethereum.max_confirmation_timeout")
	}

	return &cfg, nil
}

// LoadTokenctlConfig loads configuration for the operator CLI
func LoadTokenctlConfig(configFile string, envPath string) (*TokenctlConfig, error) {
	v := configureViper("tokenctl", configFile, envPath)

	setDatabaseDefaults(v)
	setEthereumDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg TokenctlConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// current directory, then cmd/<service>/, then config/
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("VICUNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.contract_address",
		"ethereum.confirmation_timeout",
		"ethereum.max_confirmation_timeout",
		"ethereum.receipt_poll_interval",
		// Wallet
		"wallet.keystore_dir",
		"wallet.account",
		"wallet.passphrase",
		"wallet.private_key",
		"wallet.recipient",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Resolver
		"resolver.require_transformation_destination",
		// Rate limit
		"rate_limit.redis_addr",
		"rate_limit.redis_password",
		"rate_limit.redis_db",
		"rate_limit.redis_key_prefix",
		"rate_limit.requests_per_minute",
		"rate_limit.burst",
		"rate_limit.enable_local_fallback",
		// Reconciler
		"reconciler.batch_size",
		"reconciler.pool_size",
		"reconciler.interval",
		"reconciler.stale_after",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// shared base first, then local, then optional per-service local
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
