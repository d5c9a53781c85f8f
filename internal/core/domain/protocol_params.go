package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// AdaOnlyMinUtxo is the amount of lovelace given to change outputs that
	// hold no native assets.
	AdaOnlyMinUtxo = 1_000_000
	LovelacePerAda = 1_000_000

	DefaultMinFeeA          = 44
	DefaultMinFeeB          = 155381
	DefaultCoinsPerUtxoByte = 4310
	DefaultMaxTxSize        = 16384
	DefaultMaxTxExMem       = 14_000_000
	DefaultMaxTxExSteps     = 10_000_000_000
)

var (
	DefaultPriceMem  = decimal.RequireFromString("0.0577")
	DefaultPriceStep = decimal.RequireFromString("0.0000721")

	ErrInvalidProtocolParameters = fmt.Errorf("invalid protocol parameters")
)

// ProtocolParameters are the subset of ledger parameters used to size fees,
// collateral and min-utxo amounts.
type ProtocolParameters struct {
	MinFeeA          uint64
	MinFeeB          uint64
	CoinsPerUtxoByte uint64
	MaxTxSize        int
	MaxTxExMem       uint64
	MaxTxExSteps     uint64
	PriceMem         decimal.Decimal
	PriceStep        decimal.Decimal
}

func DefaultProtocolParameters() ProtocolParameters {
	return ProtocolParameters{
		MinFeeA:          DefaultMinFeeA,
		MinFeeB:          DefaultMinFeeB,
		CoinsPerUtxoByte: DefaultCoinsPerUtxoByte,
		MaxTxSize:        DefaultMaxTxSize,
		MaxTxExMem:       DefaultMaxTxExMem,
		MaxTxExSteps:     DefaultMaxTxExSteps,
		PriceMem:         DefaultPriceMem,
		PriceStep:        DefaultPriceStep,
	}
}

func (p ProtocolParameters) Validate() error {
	if p.CoinsPerUtxoByte == 0 {
		return fmt.Errorf("%w: coins per utxo byte must be positive", ErrInvalidProtocolParameters)
	}
	if p.MaxTxSize <= 0 {
		return fmt.Errorf("%w: max tx size must be positive", ErrInvalidProtocolParameters)
	}
	if p.PriceMem.IsNegative() || p.PriceStep.IsNegative() {
		return fmt.Errorf("%w: execution prices must not be negative", ErrInvalidProtocolParameters)
	}
	return nil
}

// Fee returns the linear fee for a transaction of the given size.
func (p ProtocolParameters) Fee(txSize int) uint64 {
	return p.MinFeeA*uint64(txSize) + p.MinFeeB
}

// MaxExecutionFee returns the fee for a script execution consuming the max
// execution units allowed per transaction, rounded up to the lovelace.
func (p ProtocolParameters) MaxExecutionFee() uint64 {
	mem := p.PriceMem.Mul(decimal.NewFromInt(int64(p.MaxTxExMem)))
	steps := p.PriceStep.Mul(decimal.NewFromInt(int64(p.MaxTxExSteps)))
	return uint64(mem.Add(steps).Ceil().IntPart())
}
