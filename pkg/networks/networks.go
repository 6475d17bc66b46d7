package networks

import "fmt"

// Profile describes a supported blockchain network: chain ID, default RPC
// endpoint, provider endpoint template, explorer and marketplace base URLs,
// and the native currency symbol. Profiles are immutable; one is selected at
// process start and kept for the process lifetime.
type Profile struct {
	Key            string
	Name           string
	ChainID        int64
	DefaultRPC     string
	ProviderRPC    string // endpoint template keyed by a provider API key, "" if none
	Explorer       string // block explorer base URL, "" for networks without one
	OpenSea        string // marketplace base URL, "" for networks without one
	NativeCurrency string
}

// Supported networks, keyed by the value of the network selector variable.
var profiles = map[string]Profile{
	"mainnet": {
		Key:            "mainnet",
		Name:           "Ethereum Mainnet",
		ChainID:        1,
		DefaultRPC:     "https://mainnet.infura.io/v3/YOUR_INFURA_KEY",
		ProviderRPC:    "https://mainnet.infura.io/v3/%s",
		Explorer:       "https://etherscan.io",
		OpenSea:        "https://opensea.io",
		NativeCurrency: "ETH",
	},
	"polygon": {
		Key:            "polygon",
		Name:           "Polygon Mainnet",
		ChainID:        137,
		DefaultRPC:     "https://polygon-rpc.com",
		ProviderRPC:    "https://polygon-mainnet.infura.io/v3/%s",
		Explorer:       "https://polygonscan.com",
		OpenSea:        "https://opensea.io",
		NativeCurrency: "MATIC",
	},
	"mumbai": {
		Key:            "mumbai",
		Name:           "Polygon Mumbai Testnet",
		ChainID:        80001,
		DefaultRPC:     "https://rpc-mumbai.maticvigil.com",
		ProviderRPC:    "https://polygon-mumbai.infura.io/v3/%s",
		Explorer:       "https://mumbai.polygonscan.com",
		OpenSea:        "https://testnets.opensea.io",
		NativeCurrency: "MATIC",
	},
	"sepolia": {
		Key:            "sepolia",
		Name:           "Ethereum Sepolia Testnet",
		ChainID:        11155111,
		DefaultRPC:     "https://sepolia.infura.io/v3/YOUR_INFURA_KEY",
		ProviderRPC:    "https://sepolia.infura.io/v3/%s",
		Explorer:       "https://sepolia.etherscan.io",
		OpenSea:        "https://testnets.opensea.io",
		NativeCurrency: "ETH",
	},
	"localhost": {
		Key:            "localhost",
		Name:           "Local Hardhat Network",
		ChainID:        1337,
		DefaultRPC:     "http://127.0.0.1:8545",
		NativeCurrency: "ETH",
	},
}

// Localhost is the fallback profile used when the selector names an unknown network.
var Localhost = profiles["localhost"]

// Get returns the profile for the given network key. Unknown keys fall back
// to the localhost profile, mirroring degraded-mode behavior elsewhere:
// a bad selector must not abort startup.
func Get(key string) Profile {
	if p, ok := profiles[key]; ok {
		return p
	}
	return Localhost
}

// Keys returns the keys of all supported networks.
func Keys() []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	return keys
}

// ResolveRPC picks the RPC endpoint for the profile. Priority: an explicit
// override, then the provider template filled with the API key, then the
// profile default.
func (p Profile) ResolveRPC(override, providerKey string) string {
	if override != "" {
		return override
	}
	if providerKey != "" && p.ProviderRPC != "" {
		return fmt.Sprintf(p.ProviderRPC, providerKey)
	}
	return p.DefaultRPC
}

// AddressURL returns the explorer page for a contract or account address.
// The second return is false when the profile has no explorer.
func (p Profile) AddressURL(address string) (string, bool) {
	if p.Explorer == "" {
		return "", false
	}
	return fmt.Sprintf("%s/address/%s", p.Explorer, address), true
}

// TokenURL returns the explorer page for a single token of a contract.
func (p Profile) TokenURL(address string, tokenID uint64) (string, bool) {
	if p.Explorer == "" {
		return "", false
	}
	return fmt.Sprintf("%s/token/%s?a=%d", p.Explorer, address, tokenID), true
}

// TxURL returns the explorer page for a transaction hash.
func (p Profile) TxURL(txHash string) (string, bool) {
	if p.Explorer == "" {
		return "", false
	}
	return fmt.Sprintf("%s/tx/%s", p.Explorer, txHash), true
}
