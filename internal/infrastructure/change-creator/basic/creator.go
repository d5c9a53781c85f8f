package basic_change

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

type creator struct {
	minUtxo ports.MinUtxoCalculator
}

// NewBasicChangeCreator returns a change creator that sends the whole
// leftover to a single output.
func NewBasicChangeCreator(minUtxo ports.MinUtxoCalculator) ports.ChangeCreator {
	return &creator{minUtxo}
}

func (c *creator) CalculateChange(
	cs domain.CoinSelection, requested domain.Balance,
	changeAddress string, feeBuffer uint64,
) fn.Result[domain.CoinSelection] {
	selected := cs.SelectedBalance()
	spendable := requested.Lovelace + feeBuffer

	leftover := selected.Sub(requested)
	if negative := leftover.NegativeAssets(); len(negative) > 0 {
		asset := negative[0].AssetID
		return fn.Err[domain.CoinSelection](domain.NewInsufficientFundsError(
			&asset, requested.AssetQuantity(asset), selected.AssetQuantity(asset), 0,
		))
	}
	if selected.Lovelace < spendable {
		return fn.Err[domain.CoinSelection](domain.NewInsufficientFundsError(
			nil, int64(spendable), int64(selected.Lovelace), 0,
		))
	}

	out := domain.NewChangeOutput(changeAddress)
	out.Value = domain.Balance{
		Lovelace: selected.Lovelace - requested.Lovelace,
		Assets:   leftover.PositiveAssets(),
	}.Normalize()

	if out.Value.IsZero() {
		return fn.Ok(cs.WithChange(nil))
	}

	// The output must still be valid once the fee buffer is spent.
	minLovelace := c.minUtxo.MinUtxoLovelace(out)
	if out.Value.Lovelace < minLovelace+feeBuffer {
		return fn.Err[domain.CoinSelection](domain.NewInsufficientFundsError(
			nil, int64(requested.Lovelace+minLovelace+feeBuffer),
			int64(selected.Lovelace), 0,
		))
	}

	return fn.Ok(cs.WithChange([]domain.TransactionOutput{out}))
}
