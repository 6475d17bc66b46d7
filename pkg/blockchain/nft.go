package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// transferEventSig is the topic hash of the ERC-721 Transfer event.
var transferEventSig = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// NFTMetadata is the normalized metadata record for a single ticket token.
// Extension fields (EventID, TicketType, IsUsed) are nil when the contract
// does not support the corresponding calls — explicitly unknown rather than
// defaulted.
type NFTMetadata struct {
	TokenID         int64
	TokenURI        string
	Owner           string
	ContractAddress string
	Network         string
	ChainID         *big.Int
	EventID         *int64
	TicketType      *string
	IsUsed          *bool
	ExplorerURL     string
}

// TransferRecord is one hop in a token's transfer history. LogIndex is the
// position of the Transfer event within its block and orders hops that share
// a block.
type TransferRecord struct {
	TxHash      string
	BlockNumber uint64
	LogIndex    uint
	Timestamp   uint64
	From        string
	To          string
	TokenID     int64
	ExplorerURL string
}

// MintTicket mints a new ticket NFT to the given address and returns the
// transaction hash.
func (c *EVMClient) MintTicket(ctx context.Context, toAddress string, eventID int64, ticketURI string) (string, error) {
	return c.Send(ctx, "TicketNFT", "mintTicket",
		[]any{common.HexToAddress(toAddress), big.NewInt(eventID), ticketURI}, nil)
}

// TransferTicket transfers a ticket NFT between wallets and returns the
// transaction hash.
func (c *EVMClient) TransferTicket(ctx context.Context, fromAddress, toAddress string, tokenID int64) (string, error) {
	return c.Send(ctx, "TicketNFT", "transferFrom",
		[]any{common.HexToAddress(fromAddress), common.HexToAddress(toAddress), big.NewInt(tokenID)}, nil)
}

// MarkTicketUsed flags the token as consumed on chain.
func (c *EVMClient) MarkTicketUsed(ctx context.Context, tokenID int64) (string, error) {
	return c.Send(ctx, "TicketNFT", "markTicketUsed", []any{big.NewInt(tokenID)}, nil)
}

// GetNFTMetadata reads token URI and owner for a token of a TicketNFT-shaped
// contract at the given address, plus best-effort extension fields. Failure
// of an extension call leaves its field nil; failure of the mandatory reads
// fails the whole fetch.
func (c *EVMClient) GetNFTMetadata(ctx context.Context, contractAddress string, tokenID int64) (*NFTMetadata, error) {
	if !c.IsConnected(ctx) {
		return nil, ErrNotConnected
	}

	contractABI, err := c.abiFor("TicketNFT")
	if err != nil {
		return nil, fmt.Errorf("resolve TicketNFT interface: %w", err)
	}
	address := common.HexToAddress(contractAddress)
	id := big.NewInt(tokenID)

	tokenURI, err := c.callString(ctx, contractABI, address, "tokenURI", id)
	if err != nil {
		return nil, fmt.Errorf("tokenURI(%d): %w", tokenID, err)
	}
	owner, err := c.callAddress(ctx, contractABI, address, "ownerOf", id)
	if err != nil {
		return nil, fmt.Errorf("ownerOf(%d): %w", tokenID, err)
	}

	meta := &NFTMetadata{
		TokenID:         tokenID,
		TokenURI:        tokenURI,
		Owner:           owner.Hex(),
		ContractAddress: contractAddress,
		Network:         c.Profile.Key,
		ChainID:         c.chainID,
	}
	if url, ok := c.Profile.TokenURL(contractAddress, uint64(tokenID)); ok {
		meta.ExplorerURL = url
	}

	// Extension calls are best-effort: older ticket contracts do not expose them.
	if eventID, err := c.callBigInt(ctx, contractABI, address, "getEventId", id); err == nil {
		v := eventID.Int64()
		meta.EventID = &v
	}
	if ticketType, err := c.callString(ctx, contractABI, address, "getTicketType", id); err == nil {
		meta.TicketType = &ticketType
	}
	if used, err := c.callBool(ctx, contractABI, address, "isTicketUsed", id); err == nil {
		meta.IsUsed = &used
	}

	return meta, nil
}

// GetNFTHistory returns the transfer history of a token, chronological by
// block. It scans Transfer logs across the full chain history filtered by
// token id and joins each log to its block header for the timestamp.
func (c *EVMClient) GetNFTHistory(ctx context.Context, contractAddress string, tokenID int64) ([]TransferRecord, error) {
	if !c.IsConnected(ctx) {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ChainRead)
	defer cancel()

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{common.HexToAddress(contractAddress)},
		Topics: [][]common.Hash{
			{transferEventSig},
			nil,
			nil,
			{common.BigToHash(big.NewInt(tokenID))},
		},
	}

	logs, err := c.Client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("filter transfer logs: %w", err)
	}

	records := make([]TransferRecord, 0, len(logs))
	for _, lg := range logs {
		record, err := c.transferRecordFromLog(lg)
		if err != nil {
			zap.L().Warn("skipping malformed transfer log",
				zap.String("tx", lg.TxHash.Hex()), zap.Error(err))
			continue
		}
		header, err := c.Client.HeaderByNumber(ctx, big.NewInt(int64(lg.BlockNumber)))
		if err != nil {
			return nil, fmt.Errorf("block %d header: %w", lg.BlockNumber, err)
		}
		record.Timestamp = header.Time
		records = append(records, record)
	}

	sortTransfers(records)
	return records, nil
}

// sortTransfers orders transfer hops chronologically: by block, then by log
// index within the block. Several hops of the same token can land in one
// block, and block number alone would leave their order up to the node.
func sortTransfers(records []TransferRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].BlockNumber != records[j].BlockNumber {
			return records[i].BlockNumber < records[j].BlockNumber
		}
		return records[i].LogIndex < records[j].LogIndex
	})
}

// GetUserNFTs enumerates tokens owned by an address on a specific contract
// via balanceOf and tokenOfOwnerByIndex. A contract address is required; no
// cross-contract discovery is attempted.
func (c *EVMClient) GetUserNFTs(ctx context.Context, userAddress, contractAddress string) ([]*NFTMetadata, error) {
	if contractAddress == "" {
		return nil, fmt.Errorf("contract address required for NFT lookup")
	}
	if !c.IsConnected(ctx) {
		return nil, ErrNotConnected
	}

	contractABI, err := c.abiFor("TicketNFT")
	if err != nil {
		return nil, fmt.Errorf("resolve TicketNFT interface: %w", err)
	}
	address := common.HexToAddress(contractAddress)
	owner := common.HexToAddress(userAddress)

	balance, err := c.callBigInt(ctx, contractABI, address, "balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("balanceOf(%s): %w", userAddress, err)
	}

	nfts := make([]*NFTMetadata, 0, balance.Int64())
	for i := int64(0); i < balance.Int64(); i++ {
		tokenID, err := c.callBigInt(ctx, contractABI, address, "tokenOfOwnerByIndex", owner, big.NewInt(i))
		if err != nil {
			zap.L().Warn("token enumeration failed", zap.Int64("index", i), zap.Error(err))
			continue
		}
		meta, err := c.GetNFTMetadata(ctx, contractAddress, tokenID.Int64())
		if err != nil {
			zap.L().Warn("skipping token with unreadable metadata",
				zap.Int64("tokenID", tokenID.Int64()), zap.Error(err))
			continue
		}
		nfts = append(nfts, meta)
	}
	return nfts, nil
}

// transferRecordFromLog decodes an indexed ERC-721 Transfer log into a
// TransferRecord (timestamp filled in by the caller).
func (c *EVMClient) transferRecordFromLog(lg types.Log) (TransferRecord, error) {
	if len(lg.Topics) < 4 {
		return TransferRecord{}, fmt.Errorf("expected 4 topics, got %d", len(lg.Topics))
	}
	record := TransferRecord{
		TxHash:      lg.TxHash.Hex(),
		BlockNumber: lg.BlockNumber,
		LogIndex:    lg.Index,
		From:        common.BytesToAddress(lg.Topics[1].Bytes()).Hex(),
		To:          common.BytesToAddress(lg.Topics[2].Bytes()).Hex(),
		TokenID:     lg.Topics[3].Big().Int64(),
	}
	if url, ok := c.Profile.TxURL(record.TxHash); ok {
		record.ExplorerURL = url
	}
	return record, nil
}

// callString executes a view function returning a single string.
func (c *EVMClient) callString(ctx context.Context, contractABI abi.ABI, address common.Address, function string, args ...any) (string, error) {
	values, err := c.callAt(ctx, contractABI, address, function, args...)
	if err != nil {
		return "", err
	}
	s, ok := first(values).(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected result %T", function, first(values))
	}
	return s, nil
}

// callAddress executes a view function returning a single address.
func (c *EVMClient) callAddress(ctx context.Context, contractABI abi.ABI, address common.Address, function string, args ...any) (common.Address, error) {
	values, err := c.callAt(ctx, contractABI, address, function, args...)
	if err != nil {
		return common.Address{}, err
	}
	a, ok := first(values).(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected result %T", function, first(values))
	}
	return a, nil
}

// callBigInt executes a view function returning a single uint256.
func (c *EVMClient) callBigInt(ctx context.Context, contractABI abi.ABI, address common.Address, function string, args ...any) (*big.Int, error) {
	values, err := c.callAt(ctx, contractABI, address, function, args...)
	if err != nil {
		return nil, err
	}
	v, ok := first(values).(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result %T", function, first(values))
	}
	return v, nil
}

// callBool executes a view function returning a single bool.
func (c *EVMClient) callBool(ctx context.Context, contractABI abi.ABI, address common.Address, function string, args ...any) (bool, error) {
	values, err := c.callAt(ctx, contractABI, address, function, args...)
	if err != nil {
		return false, err
	}
	b, ok := first(values).(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected result %T", function, first(values))
	}
	return b, nil
}

// first returns the first unpacked value, or nil for empty results.
func first(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}
