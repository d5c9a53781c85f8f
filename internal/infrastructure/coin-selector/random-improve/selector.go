package randomimprove_selector

import (
	"math/rand"
	"sort"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

const (
	// minAssetInputs and minLovelaceInputs are the least number of utxos the
	// selection holds once an asset or lovelace round is completed, pool
	// permitting.
	minAssetInputs    = 1
	minLovelaceInputs = 3
)

type selector struct {
	rng       *rand.Rand
	optimized bool
}

// NewRandomImproveCoinSelector returns a selector that draws random utxos
// until the target is reached and then swaps the selected utxos for others
// holding fewer native assets. A nil rng is replaced with a time seeded one.
func NewRandomImproveCoinSelector(rng *rand.Rand) ports.CoinSelector {
	return newSelector(rng, false)
}

// NewOptimizedRandomImproveCoinSelector is like NewRandomImproveCoinSelector
// but runs the improvement twice and then drops the selected utxos that are
// not needed to cover the target.
func NewOptimizedRandomImproveCoinSelector(rng *rand.Rand) ports.CoinSelector {
	return newSelector(rng, true)
}

func newSelector(rng *rand.Rand, optimized bool) *selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &selector{rng, optimized}
}

func (s *selector) SelectInputs(
	cs domain.CoinSelection, available []domain.Utxo, target int64,
	asset *domain.AssetID, required []domain.Utxo, limit int,
) fn.Result[ports.SelectionResult] {
	start := s.SelectRequiredInputs(cs, required)
	initialAmount := start.CurrentQuantity(asset)

	if len(start.SelectedUtxos) >= limit && initialAmount < target {
		return fn.Err[ports.SelectionResult](
			domain.NewInsufficientFundsError(asset, target, initialAmount, limit),
		)
	}

	alreadySelected := start.SelectedKeys()
	pool := make([]domain.Utxo, 0, len(available))
	for _, u := range sortByDescendingQuantity(available, asset) {
		if !alreadySelected.Contains(u.Key()) {
			pool = append(pool, u)
		}
	}

	minCount := minLovelaceInputs
	if asset != nil {
		minCount = minAssetInputs
	}
	if limit < minCount {
		minCount = limit
	}

	drawn, pool, current := s.randomSelect(
		pool, len(start.SelectedUtxos), initialAmount, target, asset, minCount,
		limit,
	)
	if current < target {
		return fn.Err[ports.SelectionResult](
			domain.NewInsufficientFundsError(asset, target, current, limit),
		)
	}

	selected := newContainers(drawn, asset)
	remaining := newContainers(pool, asset)
	selected, remaining, current = improve(selected, remaining, target, current)
	if s.optimized {
		selected, remaining, current = improve(selected, remaining, target, current)

		margin := int64(0)
		if asset == nil {
			margin = domain.AdaOnlyMinUtxo
		}
		minKept := 0
		if len(start.SelectedUtxos) == 0 {
			minKept = 1
		}
		selected, _ = dropUnneeded(selected, target+margin, current, minKept)
	}

	next := start
	selectedKeys := fn.NewSet[domain.UtxoKey]()
	for _, c := range selected {
		next.SelectedUtxos = append(next.SelectedUtxos, c.utxo)
		selectedKeys.Add(c.utxo.Key())
	}

	return fn.Ok(ports.SelectionResult{
		CoinSelection: next,
		Available:     domain.Utxos(available).Without(selectedKeys),
	})
}

func (s *selector) SelectRequiredInputs(
	cs domain.CoinSelection, required []domain.Utxo,
) domain.CoinSelection {
	return cs.AddUtxos(required...)
}

// randomSelect draws utxos from the pool until both the target and the min
// count are reached. Whenever the limit is hit before reaching the target,
// the drawn utxos are discarded and the draw restarts. Discarded utxos are
// not put back into the pool, so that the loop always terminates.
// It returns the drawn utxos, what is left of the pool and the amount
// reached.
func (s *selector) randomSelect(
	pool []domain.Utxo, alreadySelected int, initialAmount, target int64,
	asset *domain.AssetID, minCount, limit int,
) ([]domain.Utxo, []domain.Utxo, int64) {
	drawn := make([]domain.Utxo, 0)
	current := initialAmount

	for current < target || alreadySelected+len(drawn) < minCount {
		if alreadySelected+len(drawn) >= limit {
			if current >= target {
				break
			}
			drawn = drawn[:0]
			current = initialAmount
		}
		if len(pool) == 0 {
			break
		}

		i := s.rng.Intn(len(pool))
		utxo := pool[i]
		pool = append(pool[:i], pool[i+1:]...)

		drawn = append(drawn, utxo)
		current += utxo.Quantity(asset)
	}

	return drawn, pool, current
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
