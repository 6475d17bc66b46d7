package blockchain

import (
	"regexp"
	"testing"
	"time"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

func TestPlaceholderTxHashFormat(t *testing.T) {
	h := PlaceholderTxHash(42, "0x1111111111111111111111111111111111111111", time.Now())
	if !txHashPattern.MatchString(h) {
		t.Fatalf("placeholder hash %q does not look like a transaction hash", h)
	}
}

func TestPlaceholderTxHashDeterministic(t *testing.T) {
	at := time.Unix(1700000000, 500000000)
	a := PlaceholderTxHash(1, "0xabc", at)
	b := PlaceholderTxHash(1, "0xabc", at)
	if a != b {
		t.Fatalf("same inputs produced different hashes: %s vs %s", a, b)
	}
}

func TestPlaceholderTxHashVariesByInput(t *testing.T) {
	at := time.Unix(1700000000, 0)
	base := PlaceholderTxHash(1, "0xabc", at)

	if h := PlaceholderTxHash(2, "0xabc", at); h == base {
		t.Fatal("different event ids must produce different hashes")
	}
	if h := PlaceholderTxHash(1, "0xdef", at); h == base {
		t.Fatal("different wallets must produce different hashes")
	}
	if h := PlaceholderTxHash(1, "0xabc", at.Add(time.Second)); h == base {
		t.Fatal("different timestamps must produce different hashes")
	}
}
