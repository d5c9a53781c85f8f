package domain

import (
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	ErrConservationViolated = fmt.Errorf("coin selection does not preserve the balance")
)

// CoinSelection is the outcome of a coin selection: the utxos to spend, the
// inputs built from them and the change outputs. It is an owned value, every
// method returning a CoinSelection leaves the receiver untouched.
type CoinSelection struct {
	SelectedUtxos []Utxo              `json:"selectedUtxos"`
	Inputs        []TransactionInput  `json:"inputs"`
	ChangeOutputs []TransactionOutput `json:"changeOutputs"`
}

func NewCoinSelection() CoinSelection {
	return CoinSelection{
		SelectedUtxos: make([]Utxo, 0),
		Inputs:        make([]TransactionInput, 0),
		ChangeOutputs: make([]TransactionOutput, 0),
	}
}

func (cs CoinSelection) Clone() CoinSelection {
	clone := CoinSelection{
		SelectedUtxos: make([]Utxo, len(cs.SelectedUtxos)),
		Inputs:        make([]TransactionInput, len(cs.Inputs)),
		ChangeOutputs: make([]TransactionOutput, 0, len(cs.ChangeOutputs)),
	}
	copy(clone.SelectedUtxos, cs.SelectedUtxos)
	copy(clone.Inputs, cs.Inputs)
	for _, out := range cs.ChangeOutputs {
		clone.ChangeOutputs = append(clone.ChangeOutputs, out.Clone())
	}
	return clone
}

// Reset returns an empty coin selection.
func (cs CoinSelection) Reset() CoinSelection {
	return NewCoinSelection()
}

// AddUtxos returns a copy of the coin selection with the given utxos appended
// to the selected ones. Utxos already selected are skipped.
func (cs CoinSelection) AddUtxos(utxos ...Utxo) CoinSelection {
	next := cs.Clone()
	selected := Utxos(next.SelectedUtxos).KeySet()
	for _, u := range utxos {
		if selected.Contains(u.Key()) {
			continue
		}
		selected.Add(u.Key())
		next.SelectedUtxos = append(next.SelectedUtxos, u)
	}
	return next
}

// WithChange returns a copy of the coin selection with the given change
// outputs in place of the current ones.
func (cs CoinSelection) WithChange(outputs []TransactionOutput) CoinSelection {
	next := cs.Clone()
	next.ChangeOutputs = make([]TransactionOutput, 0, len(outputs))
	for _, out := range outputs {
		next.ChangeOutputs = append(next.ChangeOutputs, out.Clone())
	}
	return next
}

// BuildInputs returns a copy of the coin selection with inputs matching the
// selected utxos.
func (cs CoinSelection) BuildInputs() CoinSelection {
	next := cs.Clone()
	next.Inputs = make([]TransactionInput, 0, len(next.SelectedUtxos))
	for _, u := range next.SelectedUtxos {
		next.Inputs = append(next.Inputs, u.Input())
	}
	return next
}

func (cs CoinSelection) Contains(key UtxoKey) bool {
	for _, u := range cs.SelectedUtxos {
		if u.Key() == key {
			return true
		}
	}
	return false
}

func (cs CoinSelection) SelectedKeys() fn.Set[UtxoKey] {
	return Utxos(cs.SelectedUtxos).KeySet()
}

// CurrentQuantity returns the selected amount of the given asset, or of
// lovelace if nil.
func (cs CoinSelection) CurrentQuantity(asset *AssetID) int64 {
	var quantity int64
	for _, u := range cs.SelectedUtxos {
		quantity += u.Quantity(asset)
	}
	return quantity
}

func (cs CoinSelection) SelectedBalance() Balance {
	return AggregateUtxos(cs.SelectedUtxos)
}

func (cs CoinSelection) ChangeBalance() Balance {
	return AggregateOutputs(cs.ChangeOutputs)
}

// Validate makes sure that the selected utxos exactly cover the requested
// balance plus the change, for lovelace and for every asset.
func (cs CoinSelection) Validate(requested Balance) error {
	selected := cs.SelectedBalance()
	change := cs.ChangeBalance()

	if selected.Lovelace != requested.Lovelace+change.Lovelace {
		return fmt.Errorf(
			"%w: selected %d lovelace, requested %d, change %d",
			ErrConservationViolated, selected.Lovelace, requested.Lovelace,
			change.Lovelace,
		)
	}

	delta := selected.Sub(requested).Sub(change)
	if len(delta.Assets) > 0 {
		a := delta.Assets[0]
		return fmt.Errorf(
			"%w: asset %s is off by %d", ErrConservationViolated, a.AssetID, a.Quantity,
		)
	}
	return nil
}
