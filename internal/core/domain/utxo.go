package domain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const txHashLength = 32

var (
	ErrInvalidTxHash  = fmt.Errorf("tx hash must be a 32-byte hex string")
	ErrInvalidUtxoKey = fmt.Errorf("utxo key must be in the form <tx hash>#<index>")
)

// UtxoKey represents the key of an Utxo, composed by its tx hash and output
// index.
type UtxoKey struct {
	TxHash  string `json:"txHash"`
	TxIndex uint32 `json:"txIndex"`
}

// ParseUtxoKey parses a key in the form <tx hash>#<index>.
func ParseUtxoKey(str string) (UtxoKey, error) {
	parts := strings.Split(str, "#")
	if len(parts) != 2 {
		return UtxoKey{}, ErrInvalidUtxoKey
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return UtxoKey{}, ErrInvalidUtxoKey
	}
	key := UtxoKey{strings.ToLower(parts[0]), uint32(index)}
	if err := key.Validate(); err != nil {
		return UtxoKey{}, err
	}
	return key, nil
}

func (k UtxoKey) Validate() error {
	buf, err := hex.DecodeString(k.TxHash)
	if err != nil || len(buf) != txHashLength {
		return ErrInvalidTxHash
	}
	return nil
}

// Hash returns a fixed length digest of the key, used as storage key.
func (k UtxoKey) Hash() string {
	buf, _ := hex.DecodeString(k.TxHash)
	buf = binary.LittleEndian.AppendUint32(buf, k.TxIndex)
	return hex.EncodeToString(btcutil.Hash160(buf))
}

func (k UtxoKey) String() string {
	return fmt.Sprintf("%s#%d", k.TxHash, k.TxIndex)
}

// DatumOption is either the hash of a datum or the cbor encoded inline datum.
type DatumOption struct {
	Hash   []byte `json:"hash,omitempty"`
	Inline []byte `json:"inline,omitempty"`
}

func (d *DatumOption) IsInline() bool {
	return d != nil && len(d.Inline) > 0
}

// Utxo is an unspent transaction output. Two utxos are the same utxo if they
// share the same key, regardless of the other fields.
type Utxo struct {
	UtxoKey
	Balance       Balance      `json:"balance"`
	OutputAddress string       `json:"outputAddress,omitempty"`
	Datum         *DatumOption `json:"datum,omitempty"`
	ScriptRef     []byte       `json:"scriptRef,omitempty"`
}

func (u Utxo) Key() UtxoKey {
	return u.UtxoKey
}

// Quantity returns the amount of the given asset, or of lovelace if nil.
func (u Utxo) Quantity(asset *AssetID) int64 {
	return u.Balance.Quantity(asset)
}

// HoldsAsset returns whether the utxo carries the given asset. Every utxo
// holds lovelace.
func (u Utxo) HoldsAsset(asset *AssetID) bool {
	if asset == nil {
		return true
	}
	return u.Balance.AssetQuantity(*asset) > 0
}

// OtherAssetCount returns the number of native asset classes held by the utxo
// other than the given one.
func (u Utxo) OtherAssetCount(asset *AssetID) int {
	count := len(u.Balance.Assets)
	if asset != nil && u.HoldsAsset(asset) {
		count--
	}
	return count
}

// Output returns the output the utxo was created by, if its address is known.
func (u Utxo) Output() *TransactionOutput {
	if u.OutputAddress == "" {
		return nil
	}
	return &TransactionOutput{
		Address:   u.OutputAddress,
		Value:     u.Balance.Clone(),
		Purpose:   OutputPurposeSpend,
		Datum:     u.Datum,
		ScriptRef: u.ScriptRef,
	}
}

func (u Utxo) Input() TransactionInput {
	return TransactionInput{
		TxHash:  u.TxHash,
		TxIndex: u.TxIndex,
		Output:  u.Output(),
	}
}

// Utxos is a list of utxos with some set-like helpers based on the utxo keys.
type Utxos []Utxo

func (l Utxos) Keys() []UtxoKey {
	keys := make([]UtxoKey, 0, len(l))
	for _, u := range l {
		keys = append(keys, u.Key())
	}
	return keys
}

func (l Utxos) KeySet() fn.Set[UtxoKey] {
	return fn.NewSet(l.Keys()...)
}

// Without returns a copy of the list without the utxos with the given keys.
func (l Utxos) Without(keys fn.Set[UtxoKey]) Utxos {
	utxos := make(Utxos, 0, len(l))
	for _, u := range l {
		if keys.Contains(u.Key()) {
			continue
		}
		utxos = append(utxos, u)
	}
	return utxos
}

// Dedup returns a copy of the list without duplicated keys, keeping the first
// occurrence.
func (l Utxos) Dedup() Utxos {
	seen := fn.NewSet[UtxoKey]()
	utxos := make(Utxos, 0, len(l))
	for _, u := range l {
		if seen.Contains(u.Key()) {
			continue
		}
		seen.Add(u.Key())
		utxos = append(utxos, u)
	}
	return utxos
}

func (l Utxos) Balance() Balance {
	return AggregateUtxos(l)
}
