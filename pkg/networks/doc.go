// Package networks holds the static table of supported EVM networks and the
// logic to resolve a usable RPC endpoint and explorer URLs from a profile.
package networks
