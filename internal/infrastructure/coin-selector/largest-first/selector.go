package largestfirst_selector

import (
	"sort"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

type selector struct{}

func NewLargestFirstCoinSelector() ports.CoinSelector {
	return &selector{}
}

// SelectInputs walks the candidates holding the target asset from the largest
// to the smallest amount and adds them to the selection until the selected
// amount exceeds the target or the limit of inputs is reached.
func (s *selector) SelectInputs(
	cs domain.CoinSelection, available []domain.Utxo, target int64,
	asset *domain.AssetID, required []domain.Utxo, limit int,
) fn.Result[ports.SelectionResult] {
	next := s.SelectRequiredInputs(cs, required)
	current := next.CurrentQuantity(asset)

	candidates := sortByDescendingQuantity(available, asset)
	alreadySelected := next.SelectedKeys()
	selected := fn.NewSet[domain.UtxoKey]()
	for _, u := range candidates {
		if current > target || len(next.SelectedUtxos) >= limit {
			break
		}
		if alreadySelected.Contains(u.Key()) {
			continue
		}
		next.SelectedUtxos = append(next.SelectedUtxos, u)
		selected.Add(u.Key())
		current += u.Quantity(asset)
	}

	if current < target {
		return fn.Err[ports.SelectionResult](
			domain.NewInsufficientFundsError(asset, target, current, limit),
		)
	}

	return fn.Ok(ports.SelectionResult{
		CoinSelection: next,
		Available:     domain.Utxos(available).Without(selected),
	})
}

func (s *selector) SelectRequiredInputs(
	cs domain.CoinSelection, required []domain.Utxo,
) domain.CoinSelection {
	return cs.AddUtxos(required...)
}

// sortByDescendingQuantity returns the utxos holding the given asset sorted by
// descending amount. Utxos with the same amount keep their relative order.
func sortByDescendingQuantity(
	utxos []domain.Utxo, asset *domain.AssetID,
) []domain.Utxo {
	sorted := make([]domain.Utxo, 0, len(utxos))
	for _, u := range utxos {
		if u.HoldsAsset(asset) {
			sorted = append(sorted, u)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Quantity(asset) > sorted[j].Quantity(asset)
	})
	return sorted
}
