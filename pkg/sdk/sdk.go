// Package sdk exposes the high-level ticketing SDK entry points. It wires
// together chain access (events, payments, tickets), the contract registry,
// the local ticket shadow store, and IPFS metadata storage.
package sdk

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eventtix/eventtix-sdk-go/pkg/blockchain"
	"github.com/eventtix/eventtix-sdk-go/pkg/config"
	"github.com/eventtix/eventtix-sdk-go/pkg/networks"
	"github.com/eventtix/eventtix-sdk-go/pkg/storage"
	"github.com/eventtix/eventtix-sdk-go/pkg/store"
)

// TicketingSDK is the public surface consumed by application backends. All
// chain-touching methods degrade rather than fail when the node is
// unreachable; the shadow store keeps ticket listings available throughout.
type TicketingSDK interface {
	// IsConnected reports current node reachability. Never cached.
	IsConnected(ctx context.Context) bool

	// ChainID returns the chain id observed at dial time, nil while offline.
	ChainID() *big.Int

	// SignerAddress returns the configured signing identity, nil in
	// read-only mode.
	SignerAddress() *common.Address

	// LoadedContracts lists the contracts available for calls.
	LoadedContracts() []string

	// GetBalance returns an address balance in ether units.
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)

	// CreateEvent registers an event on chain.
	CreateEvent(ctx context.Context, title string, startDate int64, ticketPrice decimal.Decimal, capacity int64) (string, error)

	// GetEvent reads normalized event details from the EventContract.
	GetEvent(ctx context.Context, eventID int64) (*blockchain.EventInfo, error)

	// ProcessPayment settles an event payment through the PaymentProcessor.
	ProcessPayment(ctx context.Context, eventID int64, amount decimal.Decimal, payerAddress, organizerAddress string) (string, error)

	// PurchaseTicket registers a user for an event and records the ticket
	// in the shadow store, online or offline.
	PurchaseTicket(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)

	// MintTicket uploads ticket metadata, mints the NFT and records the
	// ticket in the shadow store.
	MintTicket(ctx context.Context, req MintRequest) (*MintResult, error)

	// TransferTicket moves a ticket between wallets and updates the shadow
	// owner record.
	TransferTicket(ctx context.Context, tokenID int64, fromAddress, toAddress string, toUserID int64) (string, error)

	// MarkTicketUsed consumes a ticket at the gate. One-way.
	MarkTicketUsed(ctx context.Context, tokenID int64) error

	// TicketsByUser lists a user's active tickets from the shadow store.
	TicketsByUser(ctx context.Context, userID int64) ([]store.Ticket, error)

	// TicketsByEvent lists an event's active tickets from the shadow store.
	TicketsByEvent(ctx context.Context, eventID int64) ([]store.Ticket, error)

	// GetNFTMetadata reads on-chain metadata of a ticket token.
	GetNFTMetadata(ctx context.Context, tokenID int64) (*blockchain.NFTMetadata, error)

	// GetNFTHistory returns the chronological transfer history of a token.
	GetNFTHistory(ctx context.Context, tokenID int64) ([]blockchain.TransferRecord, error)

	// GetUserNFTs enumerates ticket tokens owned by a wallet.
	GetUserNFTs(ctx context.Context, walletAddress string) ([]*blockchain.NFTMetadata, error)

	// WaitForReceipt blocks until a transaction confirms or the configured
	// timeout elapses.
	WaitForReceipt(ctx context.Context, txHash string) (*blockchain.Receipt, error)

	// ExplorerURL links a contract or token on the network's block explorer.
	ExplorerURL(contractAddress string, tokenID *uint64) (string, bool)

	// Close releases the chain connection and database pool.
	Close()
}

// init configures a default global zap logger. Applications may replace it
// with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Core is the concrete SDK implementation.
type Core struct {
	evm     *blockchain.EVMClient
	tickets *store.Store
	meta    *storage.Client
	cfg     *config.Config
}

// NewSDK initializes the SDK: validated configuration, EVM client (degrading
// to offline mode on connection failure), contract registry, ticket shadow
// store and metadata storage. Only a broken configuration or an unusable
// database is fatal; an unreachable node is not.
func NewSDK(cfg *config.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	profile := networks.Get(cfg.Network)
	evm := blockchain.Dial(profile, cfg)
	evm.LoadContracts(context.Background(), cfg.ContractAddresses)

	tickets, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	core := &Core{
		evm:     evm,
		tickets: tickets,
		meta:    storage.New(cfg.IpfsURL, cfg.GatewayURL),
		cfg:     cfg,
	}

	zap.L().Info("ticketing sdk initialized",
		zap.String("network", profile.Key),
		zap.Bool("connected", evm.IsConnected(context.Background())),
		zap.Strings("contracts", evm.LoadedContracts()))
	return core, nil
}

// EVM returns the underlying chain client for custom operations.
func (c *Core) EVM() *blockchain.EVMClient { return c.evm }

// Metadata returns the metadata storage client.
func (c *Core) Metadata() *storage.Client { return c.meta }

func (c *Core) IsConnected(ctx context.Context) bool { return c.evm.IsConnected(ctx) }

func (c *Core) ChainID() *big.Int { return c.evm.ChainID() }

func (c *Core) SignerAddress() *common.Address { return c.evm.SignerAddress() }

func (c *Core) LoadedContracts() []string { return c.evm.LoadedContracts() }

func (c *Core) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	return c.evm.GetBalance(ctx, address)
}

func (c *Core) CreateEvent(ctx context.Context, title string, startDate int64, ticketPrice decimal.Decimal, capacity int64) (string, error) {
	return c.evm.CreateEvent(ctx, title, startDate, ticketPrice, capacity)
}

func (c *Core) GetEvent(ctx context.Context, eventID int64) (*blockchain.EventInfo, error) {
	return c.evm.GetEvent(ctx, eventID)
}

func (c *Core) ProcessPayment(ctx context.Context, eventID int64, amount decimal.Decimal, payerAddress, organizerAddress string) (string, error) {
	return c.evm.ProcessPayment(ctx, eventID, amount, payerAddress, organizerAddress)
}

func (c *Core) WaitForReceipt(ctx context.Context, txHash string) (*blockchain.Receipt, error) {
	return c.evm.WaitForReceipt(ctx, txHash, c.cfg.Timeouts.ReceiptWait)
}

func (c *Core) ExplorerURL(contractAddress string, tokenID *uint64) (string, bool) {
	return c.evm.ExplorerURL(contractAddress, tokenID)
}

// ticketNFTAddress resolves the configured TicketNFT deployment address.
func (c *Core) ticketNFTAddress() (string, error) {
	addr, ok := c.cfg.ContractAddresses["TicketNFT"]
	if !ok || addr == "" {
		return "", fmt.Errorf("TicketNFT address not configured: %w", blockchain.ErrContractNotLoaded)
	}
	return addr, nil
}

func (c *Core) GetNFTMetadata(ctx context.Context, tokenID int64) (*blockchain.NFTMetadata, error) {
	addr, err := c.ticketNFTAddress()
	if err != nil {
		return nil, err
	}
	return c.evm.GetNFTMetadata(ctx, addr, tokenID)
}

func (c *Core) GetNFTHistory(ctx context.Context, tokenID int64) ([]blockchain.TransferRecord, error) {
	addr, err := c.ticketNFTAddress()
	if err != nil {
		return nil, err
	}
	return c.evm.GetNFTHistory(ctx, addr, tokenID)
}

func (c *Core) GetUserNFTs(ctx context.Context, walletAddress string) ([]*blockchain.NFTMetadata, error) {
	addr, err := c.ticketNFTAddress()
	if err != nil {
		return nil, err
	}
	return c.evm.GetUserNFTs(ctx, walletAddress, addr)
}

// Close releases the chain connection and database pool.
func (c *Core) Close() {
	c.evm.Close()
	if err := c.tickets.Close(); err != nil {
		zap.L().Warn("closing ticket store", zap.Error(err))
	}
}
