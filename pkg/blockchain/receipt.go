package blockchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ReceiptStatus is the outcome of a submitted transaction.
type ReceiptStatus string

const (
	StatusSuccess ReceiptStatus = "success"
	StatusFailed  ReceiptStatus = "failed"
	StatusPending ReceiptStatus = "pending"
)

// Receipt is the confirmation record of a transaction. Synthetic receipts —
// fabricated while offline or after a polling timeout — always carry
// Synthetic: true so calling layers can flag degraded state instead of
// presenting fabricated data as authoritative.
type Receipt struct {
	TxHash      string
	Status      ReceiptStatus
	BlockNumber uint64
	GasUsed     uint64
	Synthetic   bool
}

// WaitForReceipt polls until the transaction is mined or the timeout elapses.
//
// Offline behavior is a product decision made explicit here: with optimistic
// fallback enabled a disconnected client immediately returns a synthetic
// success receipt (demo continuity over strict correctness); with it disabled
// the call fails with ErrNotConnected. On a live connection a plain timeout
// converts to a synthetic failed receipt; any other error is surfaced.
func (c *EVMClient) WaitForReceipt(ctx context.Context, txHash string, timeout time.Duration) (*Receipt, error) {
	if !c.IsConnected(ctx) {
		if !c.optimistic {
			return nil, ErrNotConnected
		}
		zap.L().Warn("blockchain not connected, returning synthetic success receipt",
			zap.String("tx", txHash))
		return syntheticSuccessReceipt(txHash), nil
	}

	if timeout <= 0 {
		timeout = c.timeouts.ReceiptWait
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := c.pollReceipt(ctx, common.HexToHash(txHash))
	switch {
	case err == nil:
		return receipt, nil
	case errors.Is(err, ErrReceiptTimeout):
		zap.L().Warn("receipt wait timed out, returning synthetic failed receipt",
			zap.String("tx", txHash), zap.Duration("timeout", timeout))
		return syntheticFailedReceipt(txHash), nil
	default:
		return nil, err
	}
}

// pollReceipt polls for a receipt with exponential backoff until it is
// available, the context deadline expires, or a hard error occurs.
func (c *EVMClient) pollReceipt(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	backoff := time.Second
	const maxBackoff = 8 * time.Second
	for {
		receipt, err := c.Client.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			return fromChainReceipt(receipt), nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, wrapDeadline(ctx.Err())
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
		case errors.Is(err, context.DeadlineExceeded):
			return nil, wrapDeadline(err)
		case errors.Is(err, context.Canceled):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt lookup: %w", err)
		}
	}
}

// wrapDeadline maps a deadline expiry onto ErrReceiptTimeout so WaitForReceipt
// can tell a simple timeout from cancellation and hard errors.
func wrapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrReceiptTimeout, err)
	}
	return err
}

// fromChainReceipt normalizes a go-ethereum receipt into the tagged record
// shape exposed to callers.
func fromChainReceipt(r *types.Receipt) *Receipt {
	status := StatusFailed
	if r.Status == types.ReceiptStatusSuccessful {
		status = StatusSuccess
	}
	return &Receipt{
		TxHash:      r.TxHash.Hex(),
		Status:      status,
		BlockNumber: r.BlockNumber.Uint64(),
		GasUsed:     r.GasUsed,
	}
}
