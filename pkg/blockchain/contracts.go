package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/eventtix/eventtix-sdk-go/pkg/config"
)

// ContractHandle pairs a parsed contract interface with its deployed address.
// Handles are created once at startup and never mutated.
type ContractHandle struct {
	Name    string
	Address common.Address
	ABI     abi.ABI
}

// hardhatArtifact is the slice of a Hardhat build artifact we care about.
type hardhatArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
}

// LoadContracts populates the registry for the fixed set of contract names.
// It is a no-op while the chain is unreachable: no handles are created and
// every later lookup fails with ErrContractNotLoaded. Handles are not retried
// automatically afterward; picking up a newly-live connection requires a
// restart.
//
// A missing artifact file or missing address skips that single contract; the
// others still load.
func (c *EVMClient) LoadContracts(ctx context.Context, addresses map[string]string) {
	if !c.IsConnected(ctx) {
		zap.L().Warn("skipping contract loading, blockchain not connected")
		return
	}
	c.contracts = readContracts(c.artifactsRoot, addresses)
}

// readContracts loads handles for every contract in config.ContractNames that
// has both a build artifact and a configured address. Partial success is the
// norm, not an error.
func readContracts(artifactsRoot string, addresses map[string]string) map[string]*ContractHandle {
	handles := make(map[string]*ContractHandle, len(config.ContractNames))

	for _, name := range config.ContractNames {
		address, ok := addresses[name]
		if !ok || address == "" {
			zap.L().Warn("no address configured for contract, skipping",
				zap.String("contract", name),
				zap.String("variable", strings.ToUpper(name)+"_ADDRESS"))
			continue
		}

		parsed, err := readArtifactABI(artifactsRoot, name)
		if err != nil {
			zap.L().Warn("failed to load contract artifact, skipping",
				zap.String("contract", name), zap.Error(err))
			continue
		}

		handles[name] = &ContractHandle{
			Name:    name,
			Address: common.HexToAddress(address),
			ABI:     parsed,
		}
		zap.L().Info("loaded contract",
			zap.String("contract", name), zap.String("address", address))
	}

	return handles
}

// readArtifactABI reads and parses the ABI from the conventional Hardhat
// artifact path <root>/<Name>.sol/<Name>.json.
func readArtifactABI(artifactsRoot, name string) (abi.ABI, error) {
	path := filepath.Join(artifactsRoot, name+".sol", name+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var artifact hardhatArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return abi.ABI{}, fmt.Errorf("parse artifact %s: %w", path, err)
	}

	parsed, err := abi.JSON(strings.NewReader(string(artifact.ABI)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi of %s: %w", name, err)
	}
	return parsed, nil
}

// Contract returns the handle for the named contract, or ErrContractNotLoaded
// when it is absent from the registry.
func (c *EVMClient) Contract(name string) (*ContractHandle, error) {
	handle, ok := c.contracts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotLoaded, name)
	}
	return handle, nil
}

// LoadedContracts returns the sorted names of all loaded contracts.
func (c *EVMClient) LoadedContracts() []string {
	names := make([]string, 0, len(c.contracts))
	for name := range c.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// abiFor resolves the interface definition for a contract type: the registry
// handle when loaded, the on-disk artifact otherwise. The facade uses it to
// talk to contracts at caller-supplied addresses.
func (c *EVMClient) abiFor(name string) (abi.ABI, error) {
	if handle, ok := c.contracts[name]; ok {
		return handle.ABI, nil
	}
	return readArtifactABI(c.artifactsRoot, name)
}
