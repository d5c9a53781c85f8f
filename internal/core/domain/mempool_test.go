package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

func TestUtxosFromMempool(t *testing.T) {
	t.Parallel()

	pendingHash := strings.Repeat("11", 32)
	spentHash := strings.Repeat("22", 32)

	txs := []domain.MempoolTransaction{
		{
			TxHash: pendingHash,
			Inputs: []domain.MempoolInput{
				{TxHash: spentHash, OutputIndex: 0},
				{TxHash: spentHash, OutputIndex: 1, Collateral: true},
				{TxHash: spentHash, OutputIndex: 2, Reference: true},
			},
			Outputs: []domain.MempoolOutput{
				{
					Address:     "addr_own",
					OutputIndex: 0,
					Amount: []domain.MempoolAmount{
						{Unit: domain.LovelaceUnit, Quantity: "2000000"},
						{Unit: tokenA1.Unit(), Quantity: "7"},
					},
					// cbor unsigned integer 42
					InlineDatum: "182a",
				},
				{
					Address:     "addr_other",
					OutputIndex: 1,
					Amount: []domain.MempoolAmount{
						{Unit: domain.LovelaceUnit, Quantity: "1000000"},
					},
					DataHash: strings.Repeat("ab", 32),
				},
				{
					Address:     "addr_own",
					OutputIndex: 2,
					Amount: []domain.MempoolAmount{
						{Unit: domain.LovelaceUnit, Quantity: "5000000"},
					},
					Collateral: true,
				},
			},
		},
	}

	inputs, outputs, err := domain.UtxosFromMempool(txs)
	require.NoError(t, err)

	require.Len(t, inputs, 1)
	require.True(t, inputs.Contains(domain.UtxoKey{TxHash: spentHash, TxIndex: 0}))

	require.Len(t, outputs, 2)
	require.Equal(t, domain.UtxoKey{TxHash: pendingHash, TxIndex: 0}, outputs[0].Key())
	require.Equal(t, uint64(2000000), outputs[0].Balance.Lovelace)
	require.Equal(t, int64(7), outputs[0].Balance.AssetQuantity(tokenA1))
	require.Equal(t, "addr_own", outputs[0].OutputAddress)
	require.True(t, outputs[0].Datum.IsInline())
	require.Equal(t, []byte{0x18, 0x2a}, outputs[0].Datum.Inline)

	require.False(t, outputs[1].Datum.IsInline())
	require.Len(t, outputs[1].Datum.Hash, 32)
}

func TestUtxosFromMempoolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		output      domain.MempoolOutput
		expectedErr error
	}{
		{
			name: "invalid quantity",
			output: domain.MempoolOutput{
				Amount: []domain.MempoolAmount{{Unit: domain.LovelaceUnit, Quantity: "1.5"}},
			},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name: "invalid unit",
			output: domain.MempoolOutput{
				Amount: []domain.MempoolAmount{{Unit: "ada", Quantity: "1"}},
			},
			expectedErr: domain.ErrInvalidAssetUnit,
		},
		{
			name: "malformed inline datum",
			output: domain.MempoolOutput{
				// truncated cbor byte string
				InlineDatum: "5820ab",
			},
			expectedErr: domain.ErrMalformedDatum,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := domain.UtxosFromMempool([]domain.MempoolTransaction{
				{TxHash: strings.Repeat("11", 32), Outputs: []domain.MempoolOutput{tt.output}},
			})
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
