package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eventtix/eventtix-sdk-go/pkg/config"
	"github.com/eventtix/eventtix-sdk-go/pkg/networks"
)

// EVMClient holds the process-wide chain connection: the JSON-RPC client, the
// resolved network profile, the chain ID observed at dial time, the optional
// signing account, and the contract registry. It is created once by Dial and
// written only during initialization; afterwards it is read-only and safe for
// concurrent use by request handlers.
type EVMClient struct {
	Client  *ethclient.Client
	Profile networks.Profile

	rpc        *rpc.Client
	chainID    *big.Int
	signerAddr *common.Address
	signerKey  *ecdsa.PrivateKey
	contracts  map[string]*ContractHandle

	artifactsRoot string
	timeouts      config.Timeouts
	optimistic    bool
}

// Dial resolves the RPC endpoint for the profile (explicit override, then
// provider template, then profile default), connects, and probes liveness.
// Every failure degrades: the returned client is always usable, possibly in
// offline mode. Dial never returns an error.
//
// A signing account is loaded from cfg.PrivateKey when present; its absence
// leaves the client in read-only mode.
func Dial(profile networks.Profile, cfg *config.Config) *EVMClient {
	c := &EVMClient{
		Profile:       profile,
		contracts:     map[string]*ContractHandle{},
		artifactsRoot: cfg.ArtifactsRoot,
		timeouts:      cfg.Timeouts,
		optimistic:    !cfg.StrictOffline,
	}

	endpoint := profile.ResolveRPC(cfg.RPCAddr, cfg.ProviderKey)
	zap.L().Info("dialing blockchain endpoint",
		zap.String("network", profile.Key),
		zap.String("endpoint", redactKey(endpoint, cfg.ProviderKey)))

	ctx, cancel := context.WithTimeout(context.Background(), c.timeouts.Dial)
	defer cancel()

	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		zap.L().Warn("failed to dial endpoint, running in offline mode",
			zap.String("endpoint", redactKey(endpoint, cfg.ProviderKey)), zap.Error(err))
	} else {
		c.rpc = rpcClient
		c.Client = ethclient.NewClient(rpcClient)

		if id, perr := c.probe(ctx); perr != nil {
			zap.L().Warn("liveness probe failed, running in offline mode", zap.Error(perr))
		} else {
			c.chainID = id
			zap.L().Info("connected to blockchain",
				zap.String("network", profile.Key),
				zap.Int64("chainID", id.Int64()))
		}
	}

	if cfg.PrivateKey != "" {
		addr, key, kerr := ParsePrivateKeyECDSA(cfg.PrivateKey)
		if kerr != nil {
			zap.L().Warn("invalid private key, read-only mode", zap.Error(kerr))
		} else {
			c.signerAddr = &addr
			c.signerKey = key
			zap.L().Info("loaded signing account", zap.String("address", addr.Hex()))
		}
	} else {
		zap.L().Warn("no private key provided, read-only mode")
	}

	return c
}

// probe performs a lightweight liveness check: a raw eth_chainId round-trip.
// The raw call bypasses any client-side caching so repeated probes always hit
// the network.
func (c *EVMClient) probe(ctx context.Context) (*big.Int, error) {
	var result string
	if err := c.rpc.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return nil, err
	}
	id, ok := new(big.Int).SetString(result, 0)
	if !ok {
		return nil, fmt.Errorf("malformed chain id %q", result)
	}
	return id, nil
}

// IsConnected re-probes chain liveness synchronously. The result is not
// cached: the chain can come back or go away between requests.
func (c *EVMClient) IsConnected(ctx context.Context) bool {
	if c == nil || c.rpc == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Dial)
	defer cancel()
	_, err := c.probe(ctx)
	return err == nil
}

// ChainID returns the chain ID observed at dial time, or nil when the probe
// never succeeded.
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// SignerAddress returns the address of the configured signing account, or nil
// in read-only mode.
func (c *EVMClient) SignerAddress() *common.Address {
	return c.signerAddr
}

// GetBalance returns the native-currency balance of the address in human
// units. When the chain is unreachable it returns decimal.Zero together with
// ErrNotConnected, so callers can tell "zero balance" from "could not
// determine balance".
func (c *EVMClient) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if !c.IsConnected(ctx) {
		return decimal.Zero, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ChainRead)
	defer cancel()

	wei, err := c.Client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		zap.L().Error("failed to get balance", zap.String("address", address), zap.Error(err))
		return decimal.Zero, err
	}
	return WeiToEther(wei), nil
}

// ExplorerURL builds the block-explorer page for a contract, or for one of
// its tokens when tokenID is non-nil. The second return is false when the
// active network has no explorer (local networks).
func (c *EVMClient) ExplorerURL(contractAddress string, tokenID *uint64) (string, bool) {
	if tokenID != nil {
		return c.Profile.TokenURL(contractAddress, *tokenID)
	}
	return c.Profile.AddressURL(contractAddress)
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// redactKey masks the provider credential inside a templated endpoint URL
// before it reaches the logs.
func redactKey(endpoint, key string) string {
	if key == "" {
		return endpoint
	}
	return strings.ReplaceAll(endpoint, key, "[REDACTED]")
}
