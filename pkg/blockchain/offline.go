package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// PlaceholderTxHash synthesizes a transaction hash for offline mode by
// hashing the event id, wallet address and a timestamp. The result looks like
// a real hash ("0x" + 64 hex characters) and is unique per call time, but has
// no cryptographic relation to any chain. Deliberately sha256, not keccak:
// placeholder hashes never collide with real transaction ids.
func PlaceholderTxHash(eventID int64, walletAddress string, at time.Time) string {
	seed := fmt.Sprintf("%d%s%f", eventID, walletAddress, float64(at.UnixNano())/1e9)
	sum := sha256.Sum256([]byte(seed))
	return "0x" + hex.EncodeToString(sum[:])
}

// syntheticSuccessReceipt fabricates an immediately-resolved success receipt
// for offline mode. Field values mirror a minimal mined transaction.
func syntheticSuccessReceipt(txHash string) *Receipt {
	return &Receipt{
		TxHash:      txHash,
		Status:      StatusSuccess,
		BlockNumber: 1,
		GasUsed:     21000,
		Synthetic:   true,
	}
}

// syntheticFailedReceipt fabricates a failed receipt for a transaction whose
// outcome could not be observed in time.
func syntheticFailedReceipt(txHash string) *Receipt {
	return &Receipt{
		TxHash:    txHash,
		Status:    StatusFailed,
		Synthetic: true,
	}
}
