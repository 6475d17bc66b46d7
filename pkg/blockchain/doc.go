// Package blockchain mediates between the application's synchronous
// request/response model and an external, unreliable EVM network.
//
// It owns the process-wide connection (EVMClient), the registry of ticketing
// contracts loaded from Hardhat build artifacts and environment-configured
// addresses, and a generic transaction executor that builds, gas-estimates,
// signs and submits contract calls. A facade on top exposes the domain
// operations: event creation and registration, payment settlement, ticket
// NFT minting, transfer, metadata and transfer-history reads.
//
// The package is built to degrade, not to fail: dial and probe errors leave
// the client in offline mode, where reads report ErrNotConnected, receipts
// and registration hashes can be synthesized (always tagged Synthetic), and
// the caller is expected to serve equivalent data from the relational shadow
// store. The two deliberate hard-failure points are a missing signing key
// (ErrNoSigner) and a submission rejected by the network after signing —
// failures that would otherwise silently corrupt financial state.
package blockchain
