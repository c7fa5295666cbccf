// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            int           `validate:"min=1,max=65535"`
	RPCURL          string        `validate:"required,url"`
	ContractAddress string        `validate:"required,eth_addr"`
	ChainID         int64         `validate:"min=0"`
	KeystoreDir     string        `validate:"required_with=WalletAccount"`
	WalletAccount   string        `validate:"omitempty,eth_addr"`
	Passphrase      string        `validate:"-"`
	PrivateKey      string        `validate:"omitempty,hexadecimal"`
	AutoConnect     bool          `validate:"-"`
	DatabaseURL     string        `validate:"required"`
	DatabaseType    string        `validate:"oneof=sqlite postgres"`
	SessionSalt     string        `validate:"required"`
	PollInterval    time.Duration `validate:"min=1s"`
	TxTimeout       time.Duration `validate:"min=1s"`
	CORSOrigins     []string      `validate:"omitempty,dive,required"`
}

// HasWallet reports whether any wallet backend is configured.
func (c Config) HasWallet() bool {
	return c.PrivateKey != "" || (c.KeystoreDir != "" && c.WalletAccount != "")
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseFlags parses flags, falls back to the environment (and a .env file
// in the working directory) and validates the result.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	flags := flag.NewFlagSet("chainvote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.RPCURL, "rpc", "", "Ethereum JSON-RPC endpoint")
	flags.StringVar(&cfg.ContractAddress, "contract", "", "Voting contract address")
	flags.Int64Var(&cfg.ChainID, "chain-id", -1, "Chain ID (0 asks the node)")

	// Wallet
	flags.StringVar(&cfg.KeystoreDir, "keystore", "", "Keystore directory")
	flags.StringVar(&cfg.WalletAccount, "account", "", "Keystore account address")
	flags.BoolVar(&cfg.AutoConnect, "auto-connect", false, "Treat the wallet as already authorized")

	// Journal storage
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.SessionSalt, "session-salt", "", "Session CSRF salt (prefer env)")

	flags.DurationVar(&cfg.PollInterval, "poll", 0, "Contract polling interval")
	flags.DurationVar(&cfg.TxTimeout, "tx-timeout", 0, "Transaction confirmation timeout")

	var corsOrigins string
	flags.StringVar(&corsOrigins, "cors", "", "Comma-separated origins allowed to read the JSON API")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = os.Getenv("RPC_URL")
	}
	if cfg.ContractAddress == "" {
		cfg.ContractAddress = os.Getenv("CONTRACT_ADDRESS")
	}
	if cfg.ChainID < 0 {
		cfg.ChainID = 0
		if idStr := os.Getenv("CHAIN_ID"); idStr != "" {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return Config{}, errors.New("invalid CHAIN_ID env variable")
			}
			cfg.ChainID = id
		}
	}

	if cfg.KeystoreDir == "" {
		cfg.KeystoreDir = os.Getenv("KEYSTORE_DIR")
	}
	if cfg.WalletAccount == "" {
		cfg.WalletAccount = os.Getenv("WALLET_ACCOUNT")
	}
	if !cfg.AutoConnect {
		cfg.AutoConnect = os.Getenv("WALLET_AUTO_CONNECT") == "true"
	}
	// Wallet secrets are env-only
	cfg.Passphrase = os.Getenv("WALLET_PASSPHRASE")
	cfg.PrivateKey = trimHexPrefix(os.Getenv("WALLET_PRIVATE_KEY"))

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType == "sqlite" {
		cfg.DatabaseURL = "file:chainvote.db"
	}

	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}

	if cfg.PollInterval == 0 {
		d, err := durationEnv("POLL_INTERVAL", 10*time.Second)
		if err != nil {
			return Config{}, err
		}
		cfg.PollInterval = d
	}
	if cfg.TxTimeout == 0 {
		d, err := durationEnv("TX_TIMEOUT", 2*time.Minute)
		if err != nil {
			return Config{}, err
		}
		cfg.TxTimeout = d
	}

	if corsOrigins == "" {
		corsOrigins = os.Getenv("CORS_ORIGINS")
	}
	cfg.CORSOrigins = splitList(corsOrigins)

	if err := configValidator.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
