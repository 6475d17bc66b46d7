// Package config defines the runtime configuration for the ticketing chain
// SDK: network selection, RPC endpoint resolution inputs, signing key,
// contract artifact/address sources, shadow-database settings, metadata
// storage gateways, and operation timeouts. It also provides environment
// loading and validation/defaulting helpers.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ContractNames lists the contracts the registry will try to load. The
// deployed address for each is read from the environment variable
// "<NAME>_ADDRESS" (upper-cased).
var ContractNames = []string{"EventContract", "PaymentProcessor", "TicketNFT"}

// Config holds all settings required to initialize the blockchain client,
// contract registry, shadow store and metadata storage.
// Use FromEnv to populate it from the environment and Validate to fill
// implicit defaults.
type Config struct {
	// Network selects the target chain profile by key (e.g. "sepolia",
	// "localhost"). Unknown keys degrade to the localhost profile.
	Network string `json:"network" yaml:"network"`
	// RPCAddr is an explicit JSON-RPC endpoint URL. Highest priority when set.
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// ProviderKey is an API-key style credential used to template a provider
	// RPC URL for the selected network (Infura project ID).
	ProviderKey string `json:"provider_key" yaml:"provider_key"`
	// PrivateKey is the hex-encoded ECDSA key used to sign transactions.
	// Empty means read-only mode: all write operations fail with a
	// configuration error.
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// ArtifactsRoot is the directory holding Hardhat contract build
	// artifacts, laid out as <root>/<Name>.sol/<Name>.json.
	ArtifactsRoot string `json:"artifacts_root" yaml:"artifacts_root"`
	// ContractAddresses maps contract name to its deployed address.
	// A contract with no address is skipped by the registry.
	ContractAddresses map[string]string `json:"contract_addresses" yaml:"contract_addresses"`

	// DatabaseDriver selects the shadow store backend: "sqlite" or "postgres".
	DatabaseDriver string `json:"database_driver" yaml:"database_driver"`
	// DatabaseDSN is the DSN (postgres) or file path (sqlite) of the shadow store.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// IpfsURL is the HTTP API endpoint of the IPFS node used for ticket
	// metadata uploads and ipfs:// URI reads.
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url"`
	// GatewayURL is the HTTP gateway used to resolve gateway-addressed
	// metadata URIs.
	GatewayURL string `json:"gateway_url" yaml:"gateway_url"`

	// StrictOffline disables the offline write fallbacks. The zero value
	// keeps the optimistic behavior: a disconnected client fabricates
	// placeholder hashes and success receipts so demo flows keep working.
	// When set, offline writes fail with a connectivity error instead.
	StrictOffline bool `json:"strict_offline" yaml:"strict_offline"`

	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation deadlines. See Timeouts.WithDefaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Timeouts controls operation deadlines.
// Zero values are replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration // RPC dial and liveness probe
	ChainRead   time.Duration // eth_call, balance, logs
	ChainSubmit time.Duration // nonce/gas fetch and send tx
	ReceiptWait time.Duration // receipt polling bound
	Storage     time.Duration // metadata upload/fetch
}

// FromEnv builds a Config from environment variables:
//
//	BLOCKCHAIN_NETWORK       network selector
//	BLOCKCHAIN_RPC_URL       explicit RPC endpoint override
//	INFURA_PROJECT_ID        provider API key
//	BLOCKCHAIN_PRIVATE_KEY   signing key (optional)
//	CONTRACT_ARTIFACTS_DIR   artifacts root
//	<NAME>_ADDRESS           one per contract in ContractNames
//	DATABASE_DRIVER          "sqlite" or "postgres"
//	DATABASE_DSN             shadow store DSN / file path
//	IPFS_API_URL             IPFS HTTP API endpoint
//	IPFS_GATEWAY_URL         HTTP gateway base
//	OFFLINE_STRICT           any value disables optimistic offline fallbacks
func FromEnv() *Config {
	addrs := make(map[string]string, len(ContractNames))
	for _, name := range ContractNames {
		if v := os.Getenv(strings.ToUpper(name) + "_ADDRESS"); v != "" {
			addrs[name] = v
		}
	}
	return &Config{
		Network:           os.Getenv("BLOCKCHAIN_NETWORK"),
		RPCAddr:           os.Getenv("BLOCKCHAIN_RPC_URL"),
		ProviderKey:       os.Getenv("INFURA_PROJECT_ID"),
		PrivateKey:        os.Getenv("BLOCKCHAIN_PRIVATE_KEY"),
		ArtifactsRoot:     os.Getenv("CONTRACT_ARTIFACTS_DIR"),
		ContractAddresses: addrs,
		DatabaseDriver:    os.Getenv("DATABASE_DRIVER"),
		DatabaseDSN:       os.Getenv("DATABASE_DSN"),
		IpfsURL:           os.Getenv("IPFS_API_URL"),
		GatewayURL:        os.Getenv("IPFS_GATEWAY_URL"),
		StrictOffline:     os.Getenv("OFFLINE_STRICT") != "",
	}
}

// Validate normalizes the configuration by applying implicit defaults for
// Network, ArtifactsRoot, database and storage settings. A missing RPC
// endpoint is not an error: the client is designed to start in offline mode
// and degrade rather than refuse to boot.
func (c *Config) Validate() error {

	if c.Network == "" {
		c.Network = "localhost"
	}

	if c.ArtifactsRoot == "" {
		c.ArtifactsRoot = "artifacts/contracts"
	}

	if c.ContractAddresses == nil {
		c.ContractAddresses = map[string]string{}
	}

	if c.DatabaseDriver == "" {
		c.DatabaseDriver = "sqlite"
	}
	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseDSN == "" {
			c.DatabaseDSN = "tickets.db"
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			return errors.New("database DSN is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	if c.GatewayURL == "" {
		c.GatewayURL = "https://ipfs.io/ipfs/"
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 120s
//	Storage:     60s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 120 * time.Second
	}
	if tt.Storage == 0 {
		tt.Storage = 60 * time.Second
	}
	return tt
}
