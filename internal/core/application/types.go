package application

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
	basic_change "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/change-creator/basic"
	multisplit_change "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/change-creator/multi-split"
	largestfirst_selector "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/coin-selector/largest-first"
	randomimprove_selector "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/coin-selector/random-improve"
)

const (
	CoinSelectionStrategyLargestFirst CoinSelectionStrategy = iota
	CoinSelectionStrategyRandomImprove
	CoinSelectionStrategyOptimizedRandomImprove
)

const (
	ChangeStrategyBasic ChangeStrategy = iota
	ChangeStrategyMultiSplit
)

var (
	ErrUnknownCoinSelectionStrategy = fmt.Errorf("unknown coin selection strategy")
	ErrUnknownChangeStrategy        = fmt.Errorf("unknown change strategy")

	coinSelectionStrategyString = map[CoinSelectionStrategy]string{
		CoinSelectionStrategyLargestFirst:           "largest-first",
		CoinSelectionStrategyRandomImprove:          "random-improve",
		CoinSelectionStrategyOptimizedRandomImprove: "optimized-random-improve",
	}
	changeStrategyString = map[ChangeStrategy]string{
		ChangeStrategyBasic:      "basic",
		ChangeStrategyMultiSplit: "multi-split",
	}

	coinSelectorByType = map[CoinSelectionStrategy]CoinSelectorFactory{
		CoinSelectionStrategyLargestFirst: func(*rand.Rand) ports.CoinSelector {
			return largestfirst_selector.NewLargestFirstCoinSelector()
		},
		CoinSelectionStrategyRandomImprove:          randomimprove_selector.NewRandomImproveCoinSelector,
		CoinSelectionStrategyOptimizedRandomImprove: randomimprove_selector.NewOptimizedRandomImproveCoinSelector,
	}
	changeCreatorByType = map[ChangeStrategy]ChangeCreatorFactory{
		ChangeStrategyBasic: func(
			minUtxo ports.MinUtxoCalculator, _ ports.TxSerializer,
		) ports.ChangeCreator {
			return basic_change.NewBasicChangeCreator(minUtxo)
		},
		ChangeStrategyMultiSplit: multisplit_change.NewMultiSplitChangeCreator,
	}

	DefaultCoinSelectionStrategy = CoinSelectionStrategyOptimizedRandomImprove
	DefaultChangeStrategy        = ChangeStrategyMultiSplit
	DefaultSelectionLimit        = 50
	DefaultFeeBuffer             = uint64(1_000_000)
)

type CoinSelectorFactory func(rng *rand.Rand) ports.CoinSelector

type ChangeCreatorFactory func(
	minUtxo ports.MinUtxoCalculator, serializer ports.TxSerializer,
) ports.ChangeCreator

type CoinSelectionStrategy int

func (s CoinSelectionStrategy) String() string {
	return coinSelectionStrategyString[s]
}

func ParseCoinSelectionStrategy(str string) (CoinSelectionStrategy, error) {
	for strategy, name := range coinSelectionStrategyString {
		if strings.EqualFold(name, str) {
			return strategy, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownCoinSelectionStrategy, str)
}

type ChangeStrategy int

func (s ChangeStrategy) String() string {
	return changeStrategyString[s]
}

func ParseChangeStrategy(str string) (ChangeStrategy, error) {
	for strategy, name := range changeStrategyString {
		if strings.EqualFold(name, str) {
			return strategy, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownChangeStrategy, str)
}

// SelectionRequest holds the arguments of a coin selection.
//   - Outputs - the outputs of the transaction to fund.
//   - Utxos - the candidate utxos.
//   - ChangeAddress - the address receiving the change.
//   - Mint - (optional) the minted (positive) and burnt (negative) assets.
//   - RequiredUtxos - (optional) utxos that must be spent.
//   - Limit - max number of inputs, defaults to DefaultSelectionLimit.
//   - FeeBuffer - lovelace reserved in the last change output to pay the fee.
//   - MaxTxSize - (optional) max size in bytes of inputs and change outputs.
type SelectionRequest struct {
	Outputs        []domain.TransactionOutput
	Utxos          []domain.Utxo
	ChangeAddress  string
	Mint           domain.Balance
	RequiredUtxos  []domain.Utxo
	Limit          int
	FeeBuffer      uint64
	MaxTxSize      int
	Strategy       CoinSelectionStrategy
	ChangeStrategy ChangeStrategy
}

func (r SelectionRequest) Validate() error {
	if len(r.ChangeAddress) == 0 {
		return ErrMissingChangeAddress
	}
	if _, ok := coinSelectorByType[r.Strategy]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCoinSelectionStrategy, r.Strategy)
	}
	if _, ok := changeCreatorByType[r.ChangeStrategy]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownChangeStrategy, r.ChangeStrategy)
	}
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.MaxTxSize < 0 {
		return ErrInvalidMaxTxSize
	}
	if r.Mint.Lovelace > 0 {
		return ErrInvalidMint
	}
	for _, out := range r.Outputs {
		for _, a := range out.Value.Assets {
			if a.Quantity <= 0 {
				return fmt.Errorf(
					"%w: %s in output to %s", ErrInvalidOutputAmount, a.AssetID,
					out.Address,
				)
			}
		}
	}
	for _, u := range append(append([]domain.Utxo{}, r.Utxos...), r.RequiredUtxos...) {
		if err := u.UtxoKey.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r SelectionRequest) limit() int {
	if r.Limit == 0 {
		return DefaultSelectionLimit
	}
	return r.Limit
}

// requestedBalance returns what the selection must cover: the outputs minus
// the minted assets plus the burnt ones.
func (r SelectionRequest) requestedBalance() domain.Balance {
	return domain.AggregateOutputs(r.Outputs).Sub(r.Mint)
}
