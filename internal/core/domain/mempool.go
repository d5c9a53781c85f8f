package domain

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	ErrInvalidAmount    = fmt.Errorf("invalid amount quantity")
	ErrMalformedDatum   = fmt.Errorf("inline datum is not well-formed cbor")
	ErrInvalidDatumHash = fmt.Errorf("datum hash must be a hex string")
	ErrNegativeLovelace = fmt.Errorf("lovelace amount must not be negative")
)

// MempoolAmount is an amount as returned by chain indexers, where unit is
// either "lovelace" or the asset unit.
type MempoolAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type MempoolInput struct {
	TxHash      string          `json:"txHash"`
	OutputIndex uint32          `json:"outputIndex"`
	Address     string          `json:"address"`
	Amount      []MempoolAmount `json:"amount"`
	Collateral  bool            `json:"collateral"`
	Reference   bool            `json:"reference"`
}

type MempoolOutput struct {
	Address     string          `json:"address"`
	OutputIndex uint32          `json:"outputIndex"`
	Amount      []MempoolAmount `json:"amount"`
	DataHash    string          `json:"dataHash,omitempty"`
	InlineDatum string          `json:"inlineDatum,omitempty"`
	Collateral  bool            `json:"collateral"`
}

// MempoolTransaction is a transaction submitted but not yet confirmed.
type MempoolTransaction struct {
	TxHash  string          `json:"txHash"`
	Inputs  []MempoolInput  `json:"inputs"`
	Outputs []MempoolOutput `json:"outputs"`
}

// BalanceFromAmounts converts indexer amounts into a balance.
func BalanceFromAmounts(amounts []MempoolAmount) (Balance, error) {
	balance := Balance{}
	for _, amount := range amounts {
		quantity, err := strconv.ParseInt(amount.Quantity, 10, 64)
		if err != nil {
			return Balance{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.Quantity)
		}

		if amount.Unit == LovelaceUnit {
			if quantity < 0 {
				return Balance{}, ErrNegativeLovelace
			}
			balance.Lovelace += uint64(quantity)
			continue
		}

		id, err := ParseAssetUnit(amount.Unit)
		if err != nil {
			return Balance{}, err
		}
		balance.Assets = append(balance.Assets, Asset{id, quantity})
	}
	return balance.Normalize(), nil
}

// UtxosFromMempool returns the keys of the utxos spent by the given pending
// transactions and the utxos they create. Collateral and reference inputs are
// not spent by a successful transaction, and collateral outputs are not
// created by it, so they are skipped.
func UtxosFromMempool(
	txs []MempoolTransaction,
) (fn.Set[UtxoKey], Utxos, error) {
	inputs := fn.NewSet[UtxoKey]()
	outputs := make(Utxos, 0)

	for _, tx := range txs {
		for _, in := range tx.Inputs {
			if in.Collateral || in.Reference {
				continue
			}
			inputs.Add(UtxoKey{in.TxHash, in.OutputIndex})
		}

		for _, out := range tx.Outputs {
			if out.Collateral {
				continue
			}
			utxo, err := out.toUtxo(tx.TxHash)
			if err != nil {
				return nil, nil, fmt.Errorf(
					"tx %s output %d: %w", tx.TxHash, out.OutputIndex, err,
				)
			}
			outputs = append(outputs, *utxo)
		}
	}

	return inputs, outputs, nil
}

func (o MempoolOutput) toUtxo(txHash string) (*Utxo, error) {
	balance, err := BalanceFromAmounts(o.Amount)
	if err != nil {
		return nil, err
	}

	var datum *DatumOption
	if o.InlineDatum != "" {
		buf, err := hex.DecodeString(o.InlineDatum)
		if err != nil {
			return nil, ErrMalformedDatum
		}
		if err := cbor.Wellformed(buf); err != nil {
			return nil, ErrMalformedDatum
		}
		datum = &DatumOption{Inline: buf}
	} else if o.DataHash != "" {
		buf, err := hex.DecodeString(o.DataHash)
		if err != nil {
			return nil, ErrInvalidDatumHash
		}
		datum = &DatumOption{Hash: buf}
	}

	return &Utxo{
		UtxoKey:       UtxoKey{txHash, o.OutputIndex},
		Balance:       balance,
		OutputAddress: o.Address,
		Datum:         datum,
	}, nil
}
