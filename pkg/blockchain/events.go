package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventInfo is the normalized record shape for an on-chain event. Contract
// call results are converted into it at the boundary; raw positional values
// never leak upward.
type EventInfo struct {
	ID          int64
	Title       string
	StartDate   int64
	TicketPrice decimal.Decimal // human units
	Capacity    int64
	Organizer   string
	IsActive    bool
}

// CreateEvent registers a new event on chain and returns the transaction
// hash. The ticket price is given in human units and converted to wei.
func (c *EVMClient) CreateEvent(ctx context.Context, title string, startDate int64, ticketPrice decimal.Decimal, capacity int64) (string, error) {
	priceWei := EtherToWei(ticketPrice)
	return c.Send(ctx, "EventContract", "createEvent",
		[]any{title, big.NewInt(startDate), priceWei, big.NewInt(capacity)}, nil)
}

// GetEvent reads event details from the EventContract and normalizes them.
func (c *EVMClient) GetEvent(ctx context.Context, eventID int64) (*EventInfo, error) {
	values, err := c.Call(ctx, "EventContract", "getEvent", big.NewInt(eventID))
	if err != nil {
		return nil, err
	}
	return eventInfoFromResult(eventID, values)
}

// RegisterForEvent registers a wallet for an event, attaching the ticket
// price as transaction value. While disconnected, optimistic fallback skips
// the chain entirely and synthesizes a placeholder hash from the event id,
// wallet and current time; strict mode fails with ErrNotConnected.
func (c *EVMClient) RegisterForEvent(ctx context.Context, eventID int64, walletAddress string, ticketPrice decimal.Decimal) (string, error) {
	if !c.IsConnected(ctx) {
		if !c.optimistic {
			return "", ErrNotConnected
		}
		hash := PlaceholderTxHash(eventID, walletAddress, time.Now())
		zap.L().Warn("blockchain not connected, returning placeholder transaction hash",
			zap.Int64("eventID", eventID),
			zap.String("wallet", walletAddress),
			zap.String("tx", hash))
		return hash, nil
	}

	priceWei := EtherToWei(ticketPrice)
	// registerForEvent handles payment and ticket minting on-chain; the
	// attached value pays for the ticket.
	return c.Send(ctx, "EventContract", "registerForEvent",
		[]any{big.NewInt(eventID)}, &SendOpts{Value: priceWei})
}

// eventInfoFromResult converts the positional getEvent result
// (title, startDate, priceWei, capacity, organizer, isActive) into EventInfo.
func eventInfoFromResult(eventID int64, values []any) (*EventInfo, error) {
	if len(values) < 6 {
		return nil, fmt.Errorf("getEvent: expected 6 result values, got %d", len(values))
	}

	title, ok := values[0].(string)
	if !ok {
		return nil, fmt.Errorf("getEvent: title has type %T", values[0])
	}
	startDate, ok := values[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getEvent: startDate has type %T", values[1])
	}
	priceWei, ok := values[2].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getEvent: ticketPrice has type %T", values[2])
	}
	capacity, ok := values[3].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getEvent: capacity has type %T", values[3])
	}
	organizer, ok := values[4].(common.Address)
	if !ok {
		return nil, fmt.Errorf("getEvent: organizer has type %T", values[4])
	}
	isActive, ok := values[5].(bool)
	if !ok {
		return nil, fmt.Errorf("getEvent: isActive has type %T", values[5])
	}

	return &EventInfo{
		ID:          eventID,
		Title:       title,
		StartDate:   startDate.Int64(),
		TicketPrice: WeiToEther(priceWei),
		Capacity:    capacity.Int64(),
		Organizer:   organizer.Hex(),
		IsActive:    isActive,
	}, nil
}
