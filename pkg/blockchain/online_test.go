package blockchain

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/eventtix/eventtix-sdk-go/pkg/config"
	"github.com/eventtix/eventtix-sdk-go/pkg/networks"
)

// ticketNFTABI is the slice of the real TicketNFT interface these tests
// exercise. The extension views (getEventId etc.) are intentionally absent,
// matching an older contract generation.
const ticketNFTABI = `[
	{"type":"function","name":"mintTicket","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"to","type":"address"},
		{"name":"eventId","type":"uint256"},
		{"name":"uri","type":"string"}],
	 "outputs":[]},
	{"type":"function","name":"ownerOf","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"string"}]}
]`

const ticketNFTAddr = "0x3333333333333333333333333333333333333333"

// liveClient dials the fake node with a signing key and a loaded TicketNFT
// contract. The fake answers eth_chainId with 1337, so the client comes up
// connected on the localhost profile.
func liveClient(t *testing.T, url string) *EVMClient {
	t.Helper()
	cfg := &config.Config{
		Network:       "localhost",
		RPCAddr:       url,
		ArtifactsRoot: t.TempDir(),
		PrivateKey:    testKeyHex(t),
		Timeouts:      config.Timeouts{Dial: 2 * time.Second}.WithDefaults(),
	}
	writeArtifact(t, cfg.ArtifactsRoot, "TicketNFT", ticketNFTABI)

	c := Dial(networks.Localhost, cfg)
	if !c.IsConnected(context.Background()) {
		t.Fatal("expected connected client")
	}
	c.LoadContracts(context.Background(), map[string]string{"TicketNFT": ticketNFTAddr})
	if _, err := c.Contract("TicketNFT"); err != nil {
		t.Fatalf("TicketNFT not loaded: %v", err)
	}
	return c
}

// decodeRawTx unmarshals a submitted raw transaction back into an object.
func decodeRawTx(t *testing.T, raw string) *types.Transaction {
	t.Helper()
	b, err := hexutil.Decode(raw)
	if err != nil {
		t.Fatalf("decode raw tx hex: %v", err)
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(b); err != nil {
		t.Fatalf("unmarshal raw tx: %v", err)
	}
	return tx
}

// A token minted to a wallet reads back with that wallet as owner: the mint
// calldata is decoded off the wire and the node serves the resulting state,
// so the assertion crosses the full sign-submit-read cycle.
func TestMintTicketOwnerRoundTrip(t *testing.T) {
	fake, url := newFakeRPC(t)
	c := liveClient(t, url)

	to := "0x4444444444444444444444444444444444444444"
	hash, err := c.MintTicket(context.Background(), to, 7, "ipfs://QmTicket7")
	if err != nil {
		t.Fatalf("MintTicket: %v", err)
	}
	if !txHashPattern.MatchString(hash) {
		t.Fatalf("tx hash %q has unexpected shape", hash)
	}

	tx := decodeRawTx(t, fake.sentRaw(t, 0))
	if tx.To() == nil || *tx.To() != common.HexToAddress(ticketNFTAddr) {
		t.Fatalf("transaction to %v, want %s", tx.To(), ticketNFTAddr)
	}
	if tx.ChainId().Int64() != 1337 {
		t.Fatalf("chain id %v, want 1337", tx.ChainId())
	}
	if tx.Gas() != 100_000 {
		t.Fatalf("gas limit %d, want the node estimate 100000", tx.Gas())
	}
	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		t.Fatalf("recover sender: %v", err)
	}
	if c.SignerAddress() == nil || sender != *c.SignerAddress() {
		t.Fatalf("sender %s, want signing account %v", sender.Hex(), c.SignerAddress())
	}

	handle, err := c.Contract("TicketNFT")
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	mint := handle.ABI.Methods["mintTicket"]
	if !bytes.Equal(tx.Data()[:4], mint.ID) {
		t.Fatalf("calldata selector %x, want mintTicket %x", tx.Data()[:4], mint.ID)
	}
	args, err := mint.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		t.Fatalf("unpack mint calldata: %v", err)
	}
	mintedTo := args[0].(common.Address)
	mintedURI := args[2].(string)
	if mintedTo != common.HexToAddress(to) {
		t.Fatalf("minted to %s, want %s", mintedTo.Hex(), to)
	}

	// Serve the minted state back and read it through the facade path.
	ownerRet, err := handle.ABI.Methods["ownerOf"].Outputs.Pack(mintedTo)
	if err != nil {
		t.Fatalf("pack ownerOf return: %v", err)
	}
	uriRet, err := handle.ABI.Methods["tokenURI"].Outputs.Pack(mintedURI)
	if err != nil {
		t.Fatalf("pack tokenURI return: %v", err)
	}
	fake.serve(handle.ABI.Methods["ownerOf"].ID, ownerRet)
	fake.serve(handle.ABI.Methods["tokenURI"].ID, uriRet)

	meta, err := c.GetNFTMetadata(context.Background(), ticketNFTAddr, 7)
	if err != nil {
		t.Fatalf("GetNFTMetadata: %v", err)
	}
	if meta.Owner != common.HexToAddress(to).Hex() {
		t.Fatalf("owner %s, want the mint recipient %s", meta.Owner, to)
	}
	if meta.TokenURI != "ipfs://QmTicket7" {
		t.Fatalf("token uri %q, want the minted uri", meta.TokenURI)
	}
	if meta.ChainID == nil || meta.ChainID.Int64() != 1337 {
		t.Fatalf("chain id %v, want 1337", meta.ChainID)
	}
	// The contract exposes none of the extension views, so the optional
	// fields stay explicitly unknown.
	if meta.EventID != nil || meta.TicketType != nil || meta.IsUsed != nil {
		t.Fatalf("extension fields must be nil on a contract without them: %+v", meta)
	}
}

// When the node cannot estimate gas, the transaction still goes out with the
// local default limit.
func TestSendFallsBackToDefaultGasLimit(t *testing.T) {
	fake, url := newFakeRPC(t)
	fake.failEstimate = true
	c := liveClient(t, url)

	if _, err := c.MintTicket(context.Background(), "0x4444444444444444444444444444444444444444", 7, "ipfs://QmTicket7"); err != nil {
		t.Fatalf("MintTicket: %v", err)
	}

	tx := decodeRawTx(t, fake.sentRaw(t, 0))
	if tx.Gas() != defaultGasLimit {
		t.Fatalf("gas limit %d, want the fallback %d", tx.Gas(), defaultGasLimit)
	}
}

// A connected client whose transaction never mines within the timeout gets a
// synthetic failed receipt, not an error.
func TestWaitForReceiptOnlineTimeoutSyntheticFailure(t *testing.T) {
	_, url := newFakeRPC(t)
	c := liveClient(t, url)

	receipt, err := c.WaitForReceipt(context.Background(),
		"0x00000000000000000000000000000000000000000000000000000000000000aa",
		1200*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForReceipt: %v", err)
	}
	if receipt.Status != StatusFailed {
		t.Fatalf("status %q, want %q", receipt.Status, StatusFailed)
	}
	if !receipt.Synthetic {
		t.Fatal("timed-out receipt must be tagged synthetic")
	}
	if receipt.BlockNumber != 0 || receipt.GasUsed != 0 {
		t.Fatalf("fabricated failure must not carry chain data: %+v", receipt)
	}
}
