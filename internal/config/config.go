package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/ledger"
)

const (
	STORE_DRIVER_MEMORY   = "memory"
	STORE_DRIVER_POSTGRES = "postgres"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// StoreConfig selects the store backend
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory or postgres
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string          `mapstructure:"host"`
	Port           int             `mapstructure:"port"`
	ReadTimeout    int             `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout   int             `mapstructure:"write_timeout"` // in seconds
	IdleTimeout    int             `mapstructure:"idle_timeout"`  // in seconds
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds requests per client IP; zero disables limiting
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize int `mapstructure:"pool_size"`
}

// TiersConfig is the tier schedule. Price limits are decimal strings in payment token units.
type TiersConfig struct {
	PriceLimits      []string `mapstructure:"price_limits"`
	FractionsAmounts []uint64 `mapstructure:"fractions_amounts"`
}

// ProtocolConfig holds the protocol parameters applied at bootstrap and the protocol accounts
type ProtocolConfig struct {
	SaleFeeBps            uint64              `mapstructure:"sale_fee_bps"`
	BuyoutFeeBps          uint64              `mapstructure:"buyout_fee_bps"`
	BuyoutMinFractionsBps uint64              `mapstructure:"buyout_min_fractions_bps"`
	BuyoutOpenTimePeriod  time.Duration       `mapstructure:"buyout_open_time_period"`
	GovernanceTreasury    string              `mapstructure:"governance_treasury"`
	SaleManagerAddress    string              `mapstructure:"sale_manager_address"`     // Derived when empty
	BuyoutManagerAddress  string              `mapstructure:"buyout_manager_address"`   // Derived when empty
	Tiers                 TiersConfig         `mapstructure:"tiers"`
	Roles                 map[string][]string `mapstructure:"roles"`                    // capability -> addresses
	AllowListPath         string              `mapstructure:"allow_list_path"`
	Genesis               GenesisConfig       `mapstructure:"genesis"`
}

// GenesisConfig seeds the in-memory ledger at startup
type GenesisConfig struct {
	Assets   []GenesisAssetConfig   `mapstructure:"assets"`
	Balances []GenesisBalanceConfig `mapstructure:"balances"`
}

// GenesisAssetConfig is a unique asset and its first owner
type GenesisAssetConfig struct {
	Collection  string `mapstructure:"collection"`
	TokenNumber string `mapstructure:"token_number"`
	Owner       string `mapstructure:"owner"`
}

// GenesisBalanceConfig credits a payment token balance. Amount is a decimal string in token units.
type GenesisBalanceConfig struct {
	Token  string `mapstructure:"token"`
	Holder string `mapstructure:"holder"`
	Amount string `mapstructure:"amount"`
}

// RelayConfig holds configuration for the notification relay
type RelayConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	BatchSize         int           `mapstructure:"batch_size"`
	CursorSaveFreq    int           `mapstructure:"cursor_save_freq"`
	CursorSaveDelay   time.Duration `mapstructure:"cursor_save_delay"`
	MaxPublishElapsed time.Duration `mapstructure:"max_publish_elapsed"`
}

// SettlementSweeperConfig holds configuration for the settlement sweeper
type SettlementSweeperConfig struct {
	Schedule      string        `mapstructure:"schedule"`
	BatchSize     int           `mapstructure:"batch_size"`
	KeeperAddress string        `mapstructure:"keeper_address"`
	APIURL        string        `mapstructure:"api_url"`
	APIKey        string        `mapstructure:"api_key"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	Worker        WorkerConfig  `mapstructure:"worker"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
	Relay    RelayConfig    `mapstructure:"relay"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig `mapstructure:",squash"`
	Sweeper SettlementSweeperConfig `mapstructure:"sweeper"`
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("store.driver", STORE_DRIVER_MEMORY)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "FRACTIONS_NOTIFICATIONS")
	v.SetDefault("nats.connection_name", "ff-fractions-api")
	v.SetDefault("relay.enabled", false)
	v.SetDefault("relay.poll_interval", "1s")
	v.SetDefault("relay.batch_size", 100)
	v.SetDefault("relay.cursor_save_freq", 50)
	v.SetDefault("relay.cursor_save_delay", "5s")
	v.SetDefault("relay.max_publish_elapsed", "1m")
	setProtocolDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Store.Driver != STORE_DRIVER_MEMORY && config.Store.Driver != STORE_DRIVER_POSTGRES {
		return nil, fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}
	if config.Store.Driver == STORE_DRIVER_POSTGRES && config.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if err := config.Protocol.Validate(); err != nil {
		return nil, fmt.Errorf("invalid protocol config: %w", err)
	}

	return &config, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	v.SetDefault("sweeper.schedule", "@every 1m")
	v.SetDefault("sweeper.batch_size", 100)
	v.SetDefault("sweeper.api_url", "http://localhost:8080")
	v.SetDefault("sweeper.http_timeout", "30s")
	v.SetDefault("sweeper.worker.pool_size", 10)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Sweeper.KeeperAddress == "" {
		return nil, errors.New("sweeper.keeper_address is required")
	}
	if !common.IsHexAddress(cfg.Sweeper.KeeperAddress) {
		return nil, fmt.Errorf("sweeper.keeper_address %q is not an address", cfg.Sweeper.KeeperAddress)
	}
	if cfg.Sweeper.APIKey == "" {
		return nil, errors.New("sweeper.api_key is required")
	}

	return &cfg, nil
}

func setProtocolDefaults(v *viper.Viper) {
	tiers := domain.DefaultTierSchedule()
	limits := make([]string, len(tiers.PriceLimits))
	for i, l := range tiers.PriceLimits {
		limits[i] = l.String()
	}

	v.SetDefault("protocol.sale_fee_bps", domain.DEFAULT_SALE_FEE_BPS)
	v.SetDefault("protocol.buyout_fee_bps", domain.DEFAULT_BUYOUT_FEE_BPS)
	v.SetDefault("protocol.buyout_min_fractions_bps", domain.DEFAULT_BUYOUT_MIN_FRACTIONS_BPS)
	v.SetDefault("protocol.buyout_open_time_period", domain.DEFAULT_BUYOUT_OPEN_TIME_PERIOD.String())
	v.SetDefault("protocol.tiers.price_limits", limits)
	v.SetDefault("protocol.tiers.fractions_amounts", tiers.FractionsAmounts)
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sweeper/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_FRACTIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	// Common config keys
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Store
		"store.driver",
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
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		"server.rate_limit.requests_per_second",
		"server.rate_limit.burst",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Protocol
		"protocol.sale_fee_bps",
		"protocol.buyout_fee_bps",
		"protocol.buyout_min_fractions_bps",
		"protocol.buyout_open_time_period",
		"protocol.governance_treasury",
		"protocol.sale_manager_address",
		"protocol.buyout_manager_address",
		"protocol.tiers.price_limits",
		"protocol.tiers.fractions_amounts",
		"protocol.allow_list_path",
		// Relay
		"relay.enabled",
		"relay.poll_interval",
		"relay.batch_size",
		"relay.cursor_save_freq",
		"relay.cursor_save_delay",
		"relay.max_publish_elapsed",
		// Sweeper
		"sweeper.schedule",
		"sweeper.batch_size",
		"sweeper.keeper_address",
		"sweeper.api_url",
		"sweeper.api_key",
		"sweeper.http_timeout",
		"sweeper.worker.pool_size",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	// Create candidates list
	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
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

// Params converts the protocol section into protocol parameters
func (c *ProtocolConfig) Params() (*domain.ProtocolParams, error) {
	treasury, err := parseAddress("protocol.governance_treasury", c.GovernanceTreasury)
	if err != nil {
		return nil, err
	}

	limits := make([]*big.Int, len(c.Tiers.PriceLimits))
	for i, s := range c.Tiers.PriceLimits {
		l, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return nil, fmt.Errorf("protocol.tiers.price_limits[%d] %q is not an integer", i, s)
		}
		limits[i] = l
	}

	return &domain.ProtocolParams{
		SaleFeeBps:            c.SaleFeeBps,
		BuyoutFeeBps:          c.BuyoutFeeBps,
		BuyoutMinFractionsBps: c.BuyoutMinFractionsBps,
		BuyoutOpenTimePeriod:  c.BuyoutOpenTimePeriod,
		GovernanceTreasury:    treasury,
		Tiers: domain.TierSchedule{
			PriceLimits:      limits,
			FractionsAmounts: append([]uint64(nil), c.Tiers.FractionsAmounts...),
		},
	}, nil
}

// RoleSeed converts the roles section into the initial capability assignments
func (c *ProtocolConfig) RoleSeed() (map[domain.Capability][]common.Address, error) {
	seed := make(map[domain.Capability][]common.Address, len(c.Roles))
	for name, addrs := range c.Roles {
		capability := domain.Capability(name)
		if !domain.IsValidCapability(capability) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCapability, name)
		}
		for _, s := range addrs {
			addr, err := parseAddress("protocol.roles."+name, s)
			if err != nil {
				return nil, err
			}
			seed[capability] = append(seed[capability], addr)
		}
	}
	return seed, nil
}

// ManagerAddresses returns the configured protocol accounts. Zero values mean derive the default.
func (c *ProtocolConfig) ManagerAddresses() (saleManager, buyoutManager common.Address, err error) {
	if c.SaleManagerAddress != "" {
		if saleManager, err = parseAddress("protocol.sale_manager_address", c.SaleManagerAddress); err != nil {
			return
		}
	}
	if c.BuyoutManagerAddress != "" {
		if buyoutManager, err = parseAddress("protocol.buyout_manager_address", c.BuyoutManagerAddress); err != nil {
			return
		}
	}
	if saleManager != (common.Address{}) && saleManager == buyoutManager {
		err = errors.New("sale and buyout managers must be distinct accounts")
	}
	return
}

// Validate checks the protocol section against the protocol bounds
func (c *ProtocolConfig) Validate() error {
	params, err := c.Params()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if _, err := c.RoleSeed(); err != nil {
		return err
	}
	if _, _, err := c.ManagerAddresses(); err != nil {
		return err
	}
	if _, err := c.GenesisSeed(); err != nil {
		return err
	}
	return nil
}

// GenesisSeed converts the genesis section into the initial ledger state
func (c *ProtocolConfig) GenesisSeed() (*ledger.Genesis, error) {
	g := &ledger.Genesis{}
	for i, a := range c.Genesis.Assets {
		key := fmt.Sprintf("protocol.genesis.assets[%d]", i)
		collection, err := parseAddress(key+".collection", a.Collection)
		if err != nil {
			return nil, err
		}
		ref, err := domain.NewAssetRef(collection, a.TokenNumber)
		if err != nil {
			return nil, fmt.Errorf("%s.token_number: %w", key, err)
		}
		owner, err := parseAddress(key+".owner", a.Owner)
		if err != nil {
			return nil, err
		}
		g.Assets = append(g.Assets, ledger.GenesisAsset{Asset: ref, Owner: owner})
	}
	for i, b := range c.Genesis.Balances {
		key := fmt.Sprintf("protocol.genesis.balances[%d]", i)
		token, err := parseAddress(key+".token", b.Token)
		if err != nil {
			return nil, err
		}
		holder, err := parseAddress(key+".holder", b.Holder)
		if err != nil {
			return nil, err
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(b.Amount), 10)
		if !ok || amount.Sign() <= 0 {
			return nil, fmt.Errorf("%s.amount %q is not a positive integer", key, b.Amount)
		}
		g.Balances = append(g.Balances, ledger.GenesisBalance{Token: token, Holder: holder, Amount: amount})
	}
	return g, nil
}

func parseAddress(key, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, fmt.Errorf("%s is required", key)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%s %q is not an address", key, s)
	}
	return common.HexToAddress(s), nil
}
