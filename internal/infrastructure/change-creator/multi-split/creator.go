package multisplit_change

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

const (
	MaxChangeOutputs        = 4
	IdealMaxAssetsPerOutput = 30
	// AdaSplitThreshold is the leftover lovelace above which the change is
	// split in at least two outputs.
	AdaSplitThreshold = 10_000
	MaxOutputBytes    = 2000
)

type creator struct {
	minUtxo    ports.MinUtxoCalculator
	serializer ports.TxSerializer
}

// NewMultiSplitChangeCreator returns a change creator that spreads the
// leftover over up to MaxChangeOutputs outputs, so that following
// transactions have more utxos to choose from and no output grows too large.
func NewMultiSplitChangeCreator(
	minUtxo ports.MinUtxoCalculator, serializer ports.TxSerializer,
) ports.ChangeCreator {
	return &creator{minUtxo, serializer}
}

// IdealChangeOutputCount returns the number of change outputs for the given
// leftover.
func IdealChangeOutputCount(leftoverLovelace uint64, assetCount int) int {
	adaBased := 1
	if leftoverLovelace > AdaSplitThreshold {
		adaBased = 2
	}
	assetBased := (assetCount + IdealMaxAssetsPerOutput - 1) / IdealMaxAssetsPerOutput
	return min(MaxChangeOutputs, max(adaBased, assetBased))
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
	leftoverLovelace := selected.Lovelace - spendable

	assets := domain.AssetsBalance(leftover.PositiveAssets()).GroupedByPolicy()
	idealCount := IdealChangeOutputCount(leftoverLovelace, len(assets))

	outputs := c.distributeAssets(
		assets, changeAddress, idealCount, leftoverLovelace+feeBuffer,
	)

	var mins uint64
	for i := range outputs {
		outputs[i].Value.Lovelace = c.minUtxo.MinUtxoLovelace(outputs[i])
		mins += outputs[i].Value.Lovelace
	}
	if leftoverLovelace < mins {
		return fn.Err[domain.CoinSelection](domain.NewInsufficientFundsError(
			nil, int64(spendable+mins), int64(selected.Lovelace), 0,
		))
	}

	remainder := leftoverLovelace - mins
	for len(outputs) < idealCount && remainder >= domain.AdaOnlyMinUtxo {
		out := domain.NewChangeOutput(changeAddress)
		out.Value.Lovelace = domain.AdaOnlyMinUtxo
		outputs = append(outputs, out)
		remainder -= domain.AdaOnlyMinUtxo
	}

	if len(outputs) == 0 {
		if remainder+feeBuffer == 0 {
			return fn.Ok(cs.WithChange(nil))
		}

		// The output must still be valid once the fee buffer is spent.
		out := domain.NewChangeOutput(changeAddress)
		out.Value.Lovelace = remainder
		minLovelace := c.minUtxo.MinUtxoLovelace(out)
		if remainder < minLovelace {
			return fn.Err[domain.CoinSelection](domain.NewInsufficientFundsError(
				nil, int64(spendable+minLovelace), int64(selected.Lovelace), 0,
			))
		}
		out.Value.Lovelace += feeBuffer
		return fn.Ok(cs.WithChange([]domain.TransactionOutput{out}))
	}

	count := uint64(len(outputs))
	share, rest := remainder/count, remainder%count
	for i := range outputs {
		outputs[i].Value.Lovelace += share
	}
	outputs[len(outputs)-1].Value.Lovelace += rest + feeBuffer

	return fn.Ok(cs.WithChange(outputs))
}

// distributeAssets spreads the assets over up to idealCount outputs, opening
// a new one whenever the current one holds its share of assets. An output
// that would grow beyond MaxOutputBytes is split as well, up to
// MaxChangeOutputs. The lovelace amount is used only to size the outputs.
func (c *creator) distributeAssets(
	assets []domain.Asset, address string, idealCount int, lovelace uint64,
) []domain.TransactionOutput {
	if len(assets) == 0 {
		return nil
	}

	newOutput := func() domain.TransactionOutput {
		out := domain.NewChangeOutput(address)
		out.Value.Lovelace = lovelace
		return out
	}

	assetsPerOutput := (len(assets) + idealCount - 1) / idealCount
	outputs := []domain.TransactionOutput{newOutput()}
	for _, asset := range assets {
		last := &outputs[len(outputs)-1]
		if len(outputs) < idealCount && len(last.Value.Assets) >= assetsPerOutput {
			outputs = append(outputs, newOutput())
			last = &outputs[len(outputs)-1]
		}

		last.Value.Assets = append(last.Value.Assets, asset)
		if len(last.Value.Assets) == 1 || len(outputs) >= MaxChangeOutputs {
			continue
		}
		if c.serializer.OutputSize(*last) <= MaxOutputBytes {
			continue
		}

		last.Value.Assets = last.Value.Assets[:len(last.Value.Assets)-1]
		out := newOutput()
		out.Value.Assets = []domain.Asset{asset}
		outputs = append(outputs, out)
	}

	return outputs
}
