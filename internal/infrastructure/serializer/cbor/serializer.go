package cborserializer

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

const (
	outputAddressKey = iota
	outputValueKey
	outputDatumKey
	outputScriptRefKey
)

const (
	bodyInputsKey = iota
	bodyOutputsKey
	bodyFeeKey
)

const (
	datumHashType = iota
	inlineDatumType
)

// encodedCborTag is the tag for byte strings holding encoded cbor.
const encodedCborTag = 24

type input struct {
	_       struct{} `cbor:",toarray"`
	TxHash  []byte
	TxIndex uint32
}

type serializer struct {
	encMode cbor.EncMode
}

// NewTxSerializer returns a serializer encoding inputs and outputs as in
// Babbage era transactions, with core deterministic cbor encoding.
func NewTxSerializer() (ports.TxSerializer, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create cbor encoder: %w", err)
	}
	return &serializer{encMode}, nil
}

func (s *serializer) InputSize(in domain.TransactionInput) int {
	buf, _ := s.encMode.Marshal(encodeInput(in))
	return len(buf)
}

func (s *serializer) OutputSize(out domain.TransactionOutput) int {
	buf, _ := s.encMode.Marshal(encodeOutput(out))
	return len(buf)
}

func (s *serializer) SerializeBody(
	inputs []domain.TransactionInput, outputs []domain.TransactionOutput,
	fee uint64,
) ([]byte, error) {
	encodedInputs := make([]input, 0, len(inputs))
	for _, in := range inputs {
		encodedInputs = append(encodedInputs, encodeInput(in))
	}
	encodedOutputs := make([]map[int]interface{}, 0, len(outputs))
	for _, out := range outputs {
		encodedOutputs = append(encodedOutputs, encodeOutput(out))
	}

	return s.encMode.Marshal(map[int]interface{}{
		bodyInputsKey:  encodedInputs,
		bodyOutputsKey: encodedOutputs,
		bodyFeeKey:     fee,
	})
}

func encodeInput(in domain.TransactionInput) input {
	txHash, _ := hex.DecodeString(in.TxHash)
	return input{TxHash: txHash, TxIndex: in.TxIndex}
}

func encodeOutput(out domain.TransactionOutput) map[int]interface{} {
	encoded := map[int]interface{}{
		outputAddressKey: addressBytes(out.Address),
		outputValueKey:   encodeValue(out.Value),
	}

	if datum := out.Datum; datum != nil {
		if datum.IsInline() {
			encoded[outputDatumKey] = []interface{}{
				inlineDatumType,
				cbor.Tag{Number: encodedCborTag, Content: datum.Inline},
			}
		} else if len(datum.Hash) > 0 {
			encoded[outputDatumKey] = []interface{}{datumHashType, datum.Hash}
		}
	}
	if len(out.ScriptRef) > 0 {
		encoded[outputScriptRefKey] = cbor.Tag{
			Number: encodedCborTag, Content: out.ScriptRef,
		}
	}

	return encoded
}

// encodeValue returns the coin alone if there are no assets, or the pair of
// coin and multi-asset map otherwise.
func encodeValue(value domain.Balance) interface{} {
	assets := value.PositiveAssets()
	if len(assets) == 0 {
		return value.Lovelace
	}

	multiAsset := make(map[cbor.ByteString]map[cbor.ByteString]uint64)
	for _, a := range assets {
		policyID, _ := hex.DecodeString(a.PolicyID)
		name, _ := hex.DecodeString(a.Name)

		policy := cbor.ByteString(policyID)
		if _, ok := multiAsset[policy]; !ok {
			multiAsset[policy] = make(map[cbor.ByteString]uint64)
		}
		multiAsset[policy][cbor.ByteString(name)] += uint64(a.Quantity)
	}

	return []interface{}{value.Lovelace, multiAsset}
}

// addressBytes returns the raw bytes of a bech32 or hex encoded address.
func addressBytes(address string) []byte {
	if buf, err := domain.AddressBytes(address); err == nil {
		return buf
	}
	if buf, err := hex.DecodeString(address); err == nil {
		return buf
	}
	return []byte(address)
}
