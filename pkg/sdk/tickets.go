package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eventtix/eventtix-sdk-go/pkg/blockchain"
	"github.com/eventtix/eventtix-sdk-go/pkg/storage"
	"github.com/eventtix/eventtix-sdk-go/pkg/store"
)

// PurchaseRequest describes a ticket purchase.
type PurchaseRequest struct {
	EventID       int64
	UserID        int64
	WalletAddress string
	TicketPrice   decimal.Decimal // human units
	SeatInfo      string          // optional
	TicketType    string          // optional
}

// PurchaseResult is the outcome of a purchase: the chain transaction (real or
// placeholder) plus the shadow ticket row written for it.
type PurchaseResult struct {
	TxHash string
	Ticket *store.Ticket
}

// PurchaseTicket registers the user's wallet for the event and records the
// ticket locally. The shadow write happens regardless of connectivity: while
// offline the transaction hash is a placeholder and the row is the only
// durable record of the sale.
func (c *Core) PurchaseTicket(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	txHash, err := c.evm.RegisterForEvent(ctx, req.EventID, req.WalletAddress, req.TicketPrice)
	if err != nil {
		return nil, err
	}

	tokenID, err := c.tickets.NextTokenID(ctx)
	if err != nil {
		return nil, err
	}

	ticket := &store.Ticket{
		TokenID:         tokenID,
		EventID:         req.EventID,
		UserID:          req.UserID,
		WalletAddress:   req.WalletAddress,
		TransactionHash: txHash,
		SeatInfo:        req.SeatInfo,
		TicketType:      req.TicketType,
		IsActive:        true,
		PurchaseDate:    time.Now(),
	}
	if err := c.tickets.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("purchase recorded on chain (%s) but shadow write failed: %w", txHash, err)
	}

	zap.L().Info("ticket purchased",
		zap.Int64("eventID", req.EventID),
		zap.Int64("tokenID", tokenID),
		zap.String("tx", txHash))
	return &PurchaseResult{TxHash: txHash, Ticket: ticket}, nil
}

// MintRequest describes a direct ticket mint (comped tickets, organizer
// issuance) as opposed to a paid purchase.
type MintRequest struct {
	EventID       int64
	UserID        int64
	WalletAddress string
	Metadata      *storage.TicketMetadata // optional; uploaded to IPFS
	SeatInfo      string
	TicketType    string
}

// MintResult is the outcome of a mint: the transaction, the metadata URI the
// token was minted with, and the shadow ticket row.
type MintResult struct {
	TxHash   string
	TokenURI string
	Ticket   *store.Ticket
}

// MintTicket uploads the metadata document to IPFS, mints the NFT with the
// resulting URI, and records the ticket locally. While disconnected the
// optimistic fallback substitutes a placeholder transaction and an empty URI
// so issuance keeps working; the shadow row is written either way.
func (c *Core) MintTicket(ctx context.Context, req MintRequest) (*MintResult, error) {
	connected := c.evm.IsConnected(ctx)
	if !connected && c.cfg.StrictOffline {
		return nil, blockchain.ErrNotConnected
	}

	var uri string
	if req.Metadata != nil {
		var err error
		uri, err = c.meta.UploadTicketMetadata(ctx, req.Metadata)
		if err != nil {
			if connected {
				return nil, fmt.Errorf("upload ticket metadata: %w", err)
			}
			zap.L().Warn("metadata upload failed while offline, minting without URI", zap.Error(err))
			uri = ""
		}
	}

	var txHash string
	if connected {
		var err error
		txHash, err = c.evm.MintTicket(ctx, req.WalletAddress, req.EventID, uri)
		if err != nil {
			return nil, err
		}
	} else {
		txHash = blockchain.PlaceholderTxHash(req.EventID, req.WalletAddress, time.Now())
		zap.L().Warn("blockchain not connected, recording mint with placeholder hash",
			zap.Int64("eventID", req.EventID), zap.String("tx", txHash))
	}

	tokenID, err := c.tickets.NextTokenID(ctx)
	if err != nil {
		return nil, err
	}
	ticket := &store.Ticket{
		TokenID:         tokenID,
		EventID:         req.EventID,
		UserID:          req.UserID,
		WalletAddress:   req.WalletAddress,
		TransactionHash: txHash,
		SeatInfo:        req.SeatInfo,
		TicketType:      req.TicketType,
		IsActive:        true,
		PurchaseDate:    time.Now(),
	}
	if err := c.tickets.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("mint submitted (%s) but shadow write failed: %w", txHash, err)
	}

	return &MintResult{TxHash: txHash, TokenURI: uri, Ticket: ticket}, nil
}

// TransferTicket transfers the token on chain and mirrors the ownership
// change into the shadow store. The shadow update is best-effort once the
// chain transfer has been submitted.
func (c *Core) TransferTicket(ctx context.Context, tokenID int64, fromAddress, toAddress string, toUserID int64) (string, error) {
	txHash, err := c.evm.TransferTicket(ctx, fromAddress, toAddress, tokenID)
	if err != nil {
		return "", err
	}

	if err := c.tickets.UpdateOwner(ctx, tokenID, toUserID, toAddress); err != nil {
		zap.L().Warn("chain transfer submitted but shadow owner update failed",
			zap.Int64("tokenID", tokenID), zap.String("tx", txHash), zap.Error(err))
	}
	return txHash, nil
}

// MarkTicketUsed consumes a ticket at the entrance. The shadow flag is
// authoritative for gate checks; the on-chain mark is submitted best-effort
// when connected so secondary marketplaces see the state too.
func (c *Core) MarkTicketUsed(ctx context.Context, tokenID int64) error {
	if err := c.tickets.MarkUsed(ctx, tokenID); err != nil {
		return err
	}

	if c.evm.IsConnected(ctx) {
		if _, err := c.evm.MarkTicketUsed(ctx, tokenID); err != nil {
			zap.L().Warn("on-chain used mark failed, shadow record stands",
				zap.Int64("tokenID", tokenID), zap.Error(err))
		}
	}
	return nil
}

// TicketsByUser lists a user's active tickets.
func (c *Core) TicketsByUser(ctx context.Context, userID int64) ([]store.Ticket, error) {
	return c.tickets.ByUser(ctx, userID)
}

// TicketsByEvent lists an event's active tickets.
func (c *Core) TicketsByEvent(ctx context.Context, eventID int64) ([]store.Ticket, error) {
	return c.tickets.ByEvent(ctx, eventID)
}
