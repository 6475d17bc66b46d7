package blockchain

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/eventtix/eventtix-sdk-go/pkg/config"
	"github.com/eventtix/eventtix-sdk-go/pkg/networks"
)

// unreachableRPC points at a port that refuses connections immediately, so
// offline-mode tests never wait on network timeouts.
const unreachableRPC = "http://127.0.0.1:1"

// offlineConfig returns a config whose endpoint is unreachable. Mutate it
// before passing to Dial when a test needs a signer or strict offline mode.
func offlineConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Network:       "localhost",
		RPCAddr:       unreachableRPC,
		ArtifactsRoot: t.TempDir(),
		Timeouts:      config.Timeouts{Dial: 500 * time.Millisecond}.WithDefaults(),
	}
	return cfg
}

func testKeyHex(t *testing.T) string {
	t.Helper()
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return hex.EncodeToString(crypto.FromECDSA(priv))
}

func TestDialUnreachableEndpointDegrades(t *testing.T) {
	c := Dial(networks.Localhost, offlineConfig(t))

	if c.IsConnected(context.Background()) {
		t.Fatal("expected disconnected client")
	}
	if c.ChainID() != nil {
		t.Fatalf("expected nil chain id, got %v", c.ChainID())
	}
	if c.SignerAddress() != nil {
		t.Fatal("expected read-only mode without a key")
	}
	if got := c.LoadedContracts(); len(got) != 0 {
		t.Fatalf("expected no contracts, got %v", got)
	}
}

func TestDialLoadsSigner(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.PrivateKey = testKeyHex(t)

	c := Dial(networks.Localhost, cfg)
	if c.SignerAddress() == nil {
		t.Fatal("expected signer address")
	}
}

func TestDialInvalidKeyStaysReadOnly(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.PrivateKey = "not-a-key"

	c := Dial(networks.Localhost, cfg)
	if c.SignerAddress() != nil {
		t.Fatal("invalid key must leave the client read-only")
	}
}

// Offline balance reads return zero plus ErrNotConnected: callers can tell
// "zero balance" from "could not determine balance".
func TestGetBalanceOffline(t *testing.T) {
	c := Dial(networks.Localhost, offlineConfig(t))

	bal, err := c.GetBalance(context.Background(), "0x0000000000000000000000000000000000000001")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if !bal.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance, got %s", bal)
	}
}

func TestExplorerURL(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.Network = "mainnet"
	c := Dial(networks.Get("mainnet"), cfg)

	url, ok := c.ExplorerURL("0xabc", nil)
	if !ok || url != "https://etherscan.io/address/0xabc" {
		t.Fatalf("unexpected url: %s ok=%v", url, ok)
	}

	token := uint64(3)
	url, ok = c.ExplorerURL("0xabc", &token)
	if !ok || url != "https://etherscan.io/token/0xabc?a=3" {
		t.Fatalf("unexpected token url: %s ok=%v", url, ok)
	}

	local := Dial(networks.Localhost, offlineConfig(t))
	if _, ok := local.ExplorerURL("0xabc", nil); ok {
		t.Fatal("localhost must have no explorer url")
	}
}

func TestRedactKey(t *testing.T) {
	got := redactKey("https://sepolia.infura.io/v3/secret123", "secret123")
	if got != "https://sepolia.infura.io/v3/[REDACTED]" {
		t.Fatalf("unexpected redaction: %s", got)
	}
	if redactKey("http://127.0.0.1:8545", "") != "http://127.0.0.1:8545" {
		t.Fatal("empty key must leave endpoint untouched")
	}
}
