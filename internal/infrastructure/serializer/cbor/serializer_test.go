package cborserializer_test

import (
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	cborserializer "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/serializer/cbor"
)

// enterprise key address, 29 bytes
var address = "61" + strings.Repeat("ab", 28)

func TestInputSize(t *testing.T) {
	t.Parallel()

	s, err := cborserializer.NewTxSerializer()
	require.NoError(t, err)

	in := domain.TransactionInput{TxHash: strings.Repeat("01", 32), TxIndex: 1}
	require.Equal(t, 36, s.InputSize(in))

	in.TxIndex = 300
	require.Equal(t, 38, s.InputSize(in))
}

func TestOutputSize(t *testing.T) {
	t.Parallel()

	s, err := cborserializer.NewTxSerializer()
	require.NoError(t, err)

	out := domain.TransactionOutput{
		Address: address,
		Value:   domain.NewBalance(1_000_000),
	}
	adaOnlySize := s.OutputSize(out)
	require.Equal(t, 39, adaOnlySize)

	withAsset := out.Clone()
	withAsset.Value = domain.NewBalance(1_000_000, domain.Asset{
		AssetID:  domain.AssetID{PolicyID: strings.Repeat("cc", 28), Name: "746f6b656e"},
		Quantity: 10,
	})
	withAssetSize := s.OutputSize(withAsset)
	// array header, map with one policy, 28-byte policy, map with one
	// asset, 5-byte name and the quantity
	require.Equal(t, adaOnlySize+1+1+30+1+6+1, withAssetSize)

	withDatum := withAsset.Clone()
	withDatum.Datum = &domain.DatumOption{Inline: []byte{0x18, 0x2a}}
	require.Greater(t, s.OutputSize(withDatum), withAssetSize)

	withScript := withDatum.Clone()
	withScript.ScriptRef = []byte{0x82, 0x01, 0x40}
	require.Greater(t, s.OutputSize(withScript), s.OutputSize(withDatum))
}

func TestSerializeBody(t *testing.T) {
	t.Parallel()

	s, err := cborserializer.NewTxSerializer()
	require.NoError(t, err)

	inputs := []domain.TransactionInput{
		{TxHash: strings.Repeat("01", 32), TxIndex: 0},
		{TxHash: strings.Repeat("02", 32), TxIndex: 3},
	}
	outputs := []domain.TransactionOutput{
		{Address: address, Value: domain.NewBalance(2_000_000)},
	}

	body, err := s.SerializeBody(inputs, outputs, 170_000)
	require.NoError(t, err)
	require.NoError(t, cbor.Wellformed(body))

	again, err := s.SerializeBody(inputs, outputs, 170_000)
	require.NoError(t, err)
	require.Equal(t, body, again)

	var decoded map[int]cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(body, &decoded))
	require.Len(t, decoded, 3)

	var fee uint64
	require.NoError(t, cbor.Unmarshal(decoded[2], &fee))
	require.Equal(t, uint64(170_000), fee)
}
