package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ProcessPayment settles a ticket payment through the PaymentProcessor,
// attaching the amount as transaction value. Returns the transaction hash.
func (c *EVMClient) ProcessPayment(ctx context.Context, eventID int64, amount decimal.Decimal, payerAddress, organizerAddress string) (string, error) {
	amountWei := EtherToWei(amount)
	// testProcessPayment is the owner-gated variant; the processor runs with
	// a single operator account for now.
	return c.Send(ctx, "PaymentProcessor", "testProcessPayment",
		[]any{
			big.NewInt(eventID),
			common.HexToAddress(payerAddress),
			common.HexToAddress(organizerAddress),
			amountWei,
		},
		&SendOpts{Value: amountWei})
}
