package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// defaultGasLimit is the fallback when gas estimation fails (a reverting call
// still estimates; the network decides the real outcome at submission). High
// enough to cover the mint and register paths.
const defaultGasLimit = 300_000

// SendOpts carries caller overrides for a state-changing call. Zero values
// mean "fetch from the network": fresh pending nonce, suggested gas price,
// estimated gas limit, no attached value.
type SendOpts struct {
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
	Nonce    *big.Int
}

// Send builds, signs and submits a state-changing call against a named
// contract function and returns the transaction hash as a hex string.
//
// A configured signing account and a loaded contract are preconditions
// (ErrNoSigner, ErrContractNotLoaded). Gas estimation failures are recovered
// locally with defaultGasLimit. A submission failure after signing is the one
// error that is never swallowed.
func (c *EVMClient) Send(ctx context.Context, contractName, function string, args []any, opts *SendOpts) (string, error) {
	if c.signerKey == nil {
		return "", ErrNoSigner
	}

	handle, err := c.Contract(contractName)
	if err != nil {
		return "", err
	}

	if opts == nil {
		opts = &SendOpts{}
	}
	value := opts.Value
	if value == nil {
		value = big.NewInt(0)
	}

	input, err := handle.ABI.Pack(function, args...)
	if err != nil {
		return "", fmt.Errorf("pack %s.%s: %w", contractName, function, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ChainSubmit)
	defer cancel()

	nonce, err := c.nonceFor(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice := opts.GasPrice
	if gasPrice == nil {
		if gasPrice, err = c.Client.SuggestGasPrice(ctx); err != nil {
			return "", fmt.Errorf("fetch gas price: %w", err)
		}
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		gasLimit = c.estimateGas(ctx, ethereum.CallMsg{
			From:     *c.signerAddr,
			To:       &handle.Address,
			Value:    value,
			GasPrice: gasPrice,
			Data:     input,
		})
	}

	chainID, err := c.signingChainID(ctx)
	if err != nil {
		return "", err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &handle.Address,
		Value:    value,
		Data:     input,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), c.signerKey)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	if err := c.Client.SendTransaction(ctx, signed); err != nil {
		zap.L().Error("transaction submission failed",
			zap.String("contract", contractName),
			zap.String("function", function),
			zap.Error(err))
		return "", fmt.Errorf("submit transaction: %w", err)
	}

	hash := signed.Hash().Hex()
	zap.L().Info("transaction sent",
		zap.String("contract", contractName),
		zap.String("function", function),
		zap.String("tx", hash))
	return hash, nil
}

// nonceFor returns the caller-supplied nonce or fetches the current pending
// nonce for the signing account. The nonce is read fresh on every send; two
// concurrent sends from the same account can race, which is accepted under
// the single-operator assumption.
func (c *EVMClient) nonceFor(ctx context.Context, opts *SendOpts) (uint64, error) {
	if opts.Nonce != nil {
		return opts.Nonce.Uint64(), nil
	}
	return c.Client.PendingNonceAt(ctx, *c.signerAddr)
}

// estimateGas asks the node for a gas estimate and substitutes
// defaultGasLimit on failure.
func (c *EVMClient) estimateGas(ctx context.Context, msg ethereum.CallMsg) uint64 {
	gas, err := c.Client.EstimateGas(ctx, msg)
	if err != nil {
		zap.L().Warn("gas estimation failed, using default limit",
			zap.Uint64("limit", defaultGasLimit), zap.Error(err))
		return defaultGasLimit
	}
	return gas
}

// signingChainID returns the chain ID for EIP-155 signing: the one resolved
// at dial time, or a fresh fetch when the dial-time probe never succeeded.
func (c *EVMClient) signingChainID(ctx context.Context) (*big.Int, error) {
	if c.chainID != nil {
		return c.chainID, nil
	}
	id, err := c.probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve chain id: %w", err)
	}
	return id, nil
}

// Call executes a read-only view function on a loaded contract and returns
// the unpacked result values. Errors are surfaced; read calls are idempotent
// and cheap for the caller to retry.
func (c *EVMClient) Call(ctx context.Context, contractName, function string, args ...any) ([]any, error) {
	handle, err := c.Contract(contractName)
	if err != nil {
		return nil, err
	}
	return c.callAt(ctx, handle.ABI, handle.Address, function, args...)
}

// callAt executes a view function against an explicit address with the given
// interface definition. The facade uses it for caller-supplied contract
// addresses.
func (c *EVMClient) callAt(ctx context.Context, contractABI abi.ABI, address common.Address, function string, args ...any) ([]any, error) {
	input, err := contractABI.Pack(function, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", function, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ChainRead)
	defer cancel()

	output, err := c.Client.CallContract(ctx, ethereum.CallMsg{To: &address, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", function, err)
	}

	values, err := contractABI.Unpack(function, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", function, err)
	}
	return values, nil
}
