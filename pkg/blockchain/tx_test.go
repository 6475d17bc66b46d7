package blockchain

import (
	"context"
	"errors"
	"testing"

	"github.com/eventtix/eventtix-sdk-go/pkg/networks"
)

// A write without a configured signing account fails before any network or
// registry work.
func TestSendWithoutSigner(t *testing.T) {
	c := Dial(networks.Localhost, offlineConfig(t))

	_, err := c.Send(context.Background(), "EventContract", "createEvent", nil, nil)
	if !errors.Is(err, ErrNoSigner) {
		t.Fatalf("expected ErrNoSigner, got %v", err)
	}
}

func TestSendAgainstUnloadedContract(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.PrivateKey = testKeyHex(t)
	c := Dial(networks.Localhost, cfg)

	_, err := c.Send(context.Background(), "TicketNFT", "mintTicket", nil, nil)
	if !errors.Is(err, ErrContractNotLoaded) {
		t.Fatalf("expected ErrContractNotLoaded, got %v", err)
	}
}

func TestCallAgainstUnloadedContract(t *testing.T) {
	c := Dial(networks.Localhost, offlineConfig(t))

	_, err := c.Call(context.Background(), "EventContract", "getEvent")
	if !errors.Is(err, ErrContractNotLoaded) {
		t.Fatalf("expected ErrContractNotLoaded, got %v", err)
	}
}
