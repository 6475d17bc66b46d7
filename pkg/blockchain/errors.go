package blockchain

import "errors"

// Failure taxonomy of the chain integration layer. Callers discriminate with
// errors.Is; everything else is wrapped context around one of these or a
// transport error that is deliberately surfaced.
var (
	// ErrNotConnected reports that the chain is unreachable. It is never
	// raised out of Dial itself; it shows up on operations that need a live
	// connection while IsConnected is false.
	ErrNotConnected = errors.New("blockchain not connected")

	// ErrContractNotLoaded reports that a named contract is absent from the
	// registry (missing artifact, missing address, or offline startup).
	ErrContractNotLoaded = errors.New("contract not loaded")

	// ErrNoSigner reports a write operation attempted without a configured
	// private key.
	ErrNoSigner = errors.New("no signer configured")

	// ErrReceiptTimeout reports that receipt polling exceeded its bound.
	// WaitForReceipt converts it into a synthetic failed receipt; it is
	// exported for callers that poll on their own.
	ErrReceiptTimeout = errors.New("receipt wait timed out")
)
