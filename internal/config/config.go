package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Store    StoreConfig
	Identity IdentityConfig
	Wallet   WalletConfig
	Cache    CacheConfig
	Payment  PaymentConfig
	Logging  LoggingConfig
}

// HTTPConfig governs the payment relay's HTTP server behaviour.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig describes connectivity to the hosted document store.
type StoreConfig struct {
	ProjectID       string
	CredentialsFile string
	RequestTimeout  time.Duration
}

// IdentityConfig points at the identity/session provider.
type IdentityConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// WalletConfig configures the non-injected wallet providers.
type WalletConfig struct {
	WalletConnectRelayURL  string
	WalletConnectProjectID string
	CoinbaseRPCURL         string
	CoinbaseAppName        string
	ChainID                int
}

// CacheConfig locates the local snapshot slot.
type CacheConfig struct {
	StateDir string
}

// PaymentConfig configures the payment middleware and receipt splits.
type PaymentConfig struct {
	Price           string
	Network         string
	NetworkLabel    string
	AssetAddress    string
	ProtocolAddress string
	TreasuryAddress string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 5000
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultStoreTimeout    = 15 * time.Second
	defaultIdentityTimeout = 30 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultChainID         = 1
	defaultPrice           = "$2.00"
	defaultNetwork         = "base-sepolia"
	defaultNetworkLabel    = "Base Sepolia"

	// Base Sepolia USDC.
	defaultAssetAddress = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"

	defaultProtocolAddress = "0xDCB45e4f6762C3D7C61a00e96Fb94ADb7Cf27721"
	defaultTreasuryAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
)

// Load reads configuration from environment variables, applying defaults. A
// local .env file is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Store: StoreConfig{
			ProjectID:       valueOrDefault("FIRESTORE_PROJECT_ID", "zybl-key"),
			CredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
			RequestTimeout:  defaultStoreTimeout,
		},
		Identity: IdentityConfig{
			BaseURL: os.Getenv("IDENTITY_BASE_URL"),
			APIKey:  os.Getenv("IDENTITY_API_KEY"),
			Timeout: defaultIdentityTimeout,
		},
		Wallet: WalletConfig{
			WalletConnectRelayURL:  os.Getenv("WALLETCONNECT_RELAY_URL"),
			WalletConnectProjectID: os.Getenv("WALLETCONNECT_PROJECT_ID"),
			CoinbaseRPCURL:         os.Getenv("COINBASE_RPC_URL"),
			CoinbaseAppName:        valueOrDefault("COINBASE_APP_NAME", "Zybl Passport"),
			ChainID:                parseIntWithDefault("CHAIN_ID", defaultChainID),
		},
		Cache: CacheConfig{
			StateDir: valueOrDefault("ZYBL_STATE_DIR", defaultStateDir()),
		},
		Payment: PaymentConfig{
			Price:           valueOrDefault("PAYMENT_PRICE", defaultPrice),
			Network:         valueOrDefault("PAYMENT_NETWORK", defaultNetwork),
			NetworkLabel:    valueOrDefault("PAYMENT_NETWORK_LABEL", defaultNetworkLabel),
			AssetAddress:    valueOrDefault("PAYMENT_ASSET_ADDRESS", defaultAssetAddress),
			ProtocolAddress: valueOrDefault("PROTOCOL_ADDRESS", defaultProtocolAddress),
			TreasuryAddress: valueOrDefault("USER_TREASURY_ADDRESS", defaultTreasuryAddress),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	port, err := parsePort("PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	for _, override := range []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"STORE_REQUEST_TIMEOUT", &cfg.Store.RequestTimeout},
		{"IDENTITY_TIMEOUT", &cfg.Identity.Timeout},
	} {
		if v := os.Getenv(override.key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", override.key, err)
			}
			*override.dst = d
		}
	}

	return cfg, nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zybl"
	}
	return filepath.Join(home, ".zybl")
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
