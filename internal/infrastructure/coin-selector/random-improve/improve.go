package randomimprove_selector

import (
	"sort"

	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

type container struct {
	utxo            domain.Utxo
	assetAmount     int64
	otherAssetCount int
}

func newContainers(utxos []domain.Utxo, asset *domain.AssetID) []container {
	containers := make([]container, 0, len(utxos))
	for _, u := range utxos {
		containers = append(containers, container{
			utxo:            u,
			assetAmount:     u.Quantity(asset),
			otherAssetCount: u.OtherAssetCount(asset),
		})
	}
	return containers
}

// improve swaps selected utxos for remaining ones holding fewer other native
// assets, as long as the selected amount stays above the target.
// Selected are visited from the most to the least crowded, remaining from the
// least to the most crowded, and the two lists are walked in lockstep.
func improve(
	selected, remaining []container, target, current int64,
) ([]container, []container, int64) {
	if len(selected) == 0 || len(remaining) == 0 {
		return selected, remaining, current
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].otherAssetCount > selected[j].otherAssetCount
	})
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].otherAssetCount < remaining[j].otherAssetCount
	})

	j := 0
	for i := range remaining {
		candidate, replaced := remaining[i], selected[j]
		if candidate.otherAssetCount >= replaced.otherAssetCount {
			continue
		}
		amount := current - replaced.assetAmount + candidate.assetAmount
		if amount < target {
			continue
		}

		selected[j], remaining[i] = candidate, replaced
		current = amount
		j++
		if j >= len(selected) {
			break
		}
	}

	return selected, remaining, current
}

// dropUnneeded removes selected utxos, from the most to the least crowded,
// while the selected amount stays at or above the threshold. At least minKept
// utxos are retained.
func dropUnneeded(
	selected []container, threshold, current int64, minKept int,
) ([]container, int64) {
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].otherAssetCount > selected[j].otherAssetCount
	})

	i := 0
	for ; i < len(selected); i++ {
		if len(selected)-i <= minKept {
			break
		}
		amount := current - selected[i].assetAmount
		if amount < threshold {
			break
		}
		current = amount
	}

	return selected[i:], current
}
