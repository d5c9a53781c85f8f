package domain

import "sort"

// Balance is an amount of lovelace plus a list of native assets. The list
// never holds two entries for the same AssetID once normalized.
type Balance struct {
	Lovelace uint64  `json:"lovelace"`
	Assets   []Asset `json:"assets,omitempty"`
}

func NewBalance(lovelace uint64, assets ...Asset) Balance {
	return Balance{lovelace, assets}.Normalize()
}

// Normalize merges duplicated asset entries and drops the zero ones while
// preserving the order of first appearance.
func (b Balance) Normalize() Balance {
	if len(b.Assets) == 0 {
		return Balance{Lovelace: b.Lovelace}
	}

	index := make(map[AssetID]int, len(b.Assets))
	assets := make([]Asset, 0, len(b.Assets))
	for _, a := range b.Assets {
		if i, ok := index[a.AssetID]; ok {
			assets[i].Quantity += a.Quantity
			continue
		}
		index[a.AssetID] = len(assets)
		assets = append(assets, a)
	}

	nonZero := assets[:0]
	for _, a := range assets {
		if a.Quantity != 0 {
			nonZero = append(nonZero, a)
		}
	}
	if len(nonZero) == 0 {
		nonZero = nil
	}
	return Balance{b.Lovelace, nonZero}
}

// Add returns the sum of the two balances.
func (b Balance) Add(other Balance) Balance {
	assets := make([]Asset, 0, len(b.Assets)+len(other.Assets))
	assets = append(assets, b.Assets...)
	assets = append(assets, other.Assets...)
	return Balance{b.Lovelace + other.Lovelace, assets}.Normalize()
}

// Sub returns the difference between the two balances. Asset quantities are
// signed deltas, while lovelace saturates at zero. Use LovelaceDelta when the
// sign of the lovelace difference matters.
func (b Balance) Sub(other Balance) Balance {
	assets := make([]Asset, 0, len(b.Assets)+len(other.Assets))
	assets = append(assets, b.Assets...)
	for _, a := range other.Assets {
		assets = append(assets, Asset{a.AssetID, -a.Quantity})
	}
	var lovelace uint64
	if b.Lovelace > other.Lovelace {
		lovelace = b.Lovelace - other.Lovelace
	}
	return Balance{lovelace, assets}.Normalize()
}

// LovelaceDelta returns the signed difference between the lovelace amounts.
func (b Balance) LovelaceDelta(other Balance) int64 {
	return int64(b.Lovelace) - int64(other.Lovelace)
}

func (b Balance) AssetQuantity(id AssetID) int64 {
	var quantity int64
	for _, a := range b.Assets {
		if a.AssetID == id {
			quantity += a.Quantity
		}
	}
	return quantity
}

// Quantity returns the amount of the given asset, or of lovelace if nil.
func (b Balance) Quantity(asset *AssetID) int64 {
	if asset == nil {
		return int64(b.Lovelace)
	}
	return b.AssetQuantity(*asset)
}

func (b Balance) AssetIDs() []AssetID {
	ids := make([]AssetID, 0, len(b.Assets))
	for _, a := range b.Assets {
		ids = append(ids, a.AssetID)
	}
	return ids
}

// PositiveAssets returns the assets with a quantity greater than zero.
func (b Balance) PositiveAssets() []Asset {
	assets := make([]Asset, 0, len(b.Assets))
	for _, a := range b.Assets {
		if a.Quantity > 0 {
			assets = append(assets, a)
		}
	}
	return assets
}

// NegativeAssets returns the assets with a quantity lower than zero.
func (b Balance) NegativeAssets() []Asset {
	assets := make([]Asset, 0)
	for _, a := range b.Assets {
		if a.Quantity < 0 {
			assets = append(assets, a)
		}
	}
	return assets
}

// SortedAssetIDs returns the ids of the positive assets in deterministic order.
func (b Balance) SortedAssetIDs() []AssetID {
	ids := make([]AssetID, 0, len(b.Assets))
	for _, a := range b.PositiveAssets() {
		ids = append(ids, a.AssetID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// GroupedByPolicy returns the assets reordered so that those sharing the same
// policy are contiguous. Policies keep the order of first appearance.
func (b Balance) GroupedByPolicy() []Asset {
	policies := make([]string, 0)
	byPolicy := make(map[string][]Asset)
	for _, a := range b.Assets {
		if _, ok := byPolicy[a.PolicyID]; !ok {
			policies = append(policies, a.PolicyID)
		}
		byPolicy[a.PolicyID] = append(byPolicy[a.PolicyID], a)
	}

	assets := make([]Asset, 0, len(b.Assets))
	for _, policy := range policies {
		assets = append(assets, byPolicy[policy]...)
	}
	return assets
}

func (b Balance) HasAssets() bool {
	return len(b.Assets) > 0
}

func (b Balance) IsZero() bool {
	return b.Lovelace == 0 && len(b.Normalize().Assets) == 0
}

// Equal compares the balances regardless of the order of the assets.
func (b Balance) Equal(other Balance) bool {
	left, right := b.Normalize(), other.Normalize()
	if left.Lovelace != right.Lovelace || len(left.Assets) != len(right.Assets) {
		return false
	}
	for _, a := range left.Assets {
		if right.AssetQuantity(a.AssetID) != a.Quantity {
			return false
		}
	}
	return true
}

func (b Balance) Clone() Balance {
	if b.Assets == nil {
		return Balance{Lovelace: b.Lovelace}
	}
	assets := make([]Asset, len(b.Assets))
	copy(assets, b.Assets)
	return Balance{b.Lovelace, assets}
}

// AggregateUtxos returns the total balance of the given utxos.
func AggregateUtxos(utxos []Utxo) Balance {
	total := Balance{}
	for _, u := range utxos {
		total = total.Add(u.Balance)
	}
	return total
}

// AggregateOutputs returns the total balance of the given outputs.
func AggregateOutputs(outputs []TransactionOutput) Balance {
	total := Balance{}
	for _, out := range outputs {
		total = total.Add(out.Value)
	}
	return total
}

// AssetsBalance returns a balance made of the given assets only.
func AssetsBalance(assets []Asset) Balance {
	return Balance{Assets: assets}.Normalize()
}
