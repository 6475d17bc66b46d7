package blockchain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// weiPerEther is 10^18 as a decimal, the scale between the human currency
// unit and the base integer unit used on chain.
var weiPerEther = decimal.NewFromBigInt(big.NewInt(1), 18)

// EtherToWei converts a human-unit amount into base integer units (wei).
// Fractions below 1 wei are truncated.
func EtherToWei(amount decimal.Decimal) *big.Int {
	return amount.Mul(weiPerEther).BigInt()
}

// WeiToEther converts a base-unit amount into the human currency unit with
// 18 digits of precision. A nil value converts to zero.
func WeiToEther(value *big.Int) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, 0).DivRound(weiPerEther, 18)
}

// GetAddressFromPrivateKeyECDSA derives the address for the given ECDSA
// private key. It returns nil if the key is nil or its public part cannot be
// asserted to *ecdsa.PublicKey.
func GetAddressFromPrivateKeyECDSA(privateKeyECDSA *ecdsa.PrivateKey) *common.Address {
	if privateKeyECDSA == nil {
		return nil
	}
	publicKeyECDSA, ok := privateKeyECDSA.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil
	}
	addr := crypto.PubkeyToAddress(*publicKeyECDSA)
	return &addr
}

// ParsePrivateKeyECDSA parses a hex-encoded ECDSA private key and returns the
// corresponding address together with the key object. A "0x" prefix is
// accepted.
func ParsePrivateKeyECDSA(privateKey string) (common.Address, *ecdsa.PrivateKey, error) {
	if len(privateKey) > 1 && privateKey[0:2] == "0x" {
		privateKey = privateKey[2:]
	}
	privateKeyECDSA, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return common.Address{}, nil, err
	}

	addr := GetAddressFromPrivateKeyECDSA(privateKeyECDSA)
	if addr == nil {
		return common.Address{}, nil, errors.New("failed to get public key")
	}
	return *addr, privateKeyECDSA, nil
}
