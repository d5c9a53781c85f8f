package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

func TestParseAssetUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		unit        string
		expected    domain.AssetID
		expectedErr error
	}{
		{
			name:     "policy only",
			unit:     policyA,
			expected: domain.AssetID{PolicyID: policyA},
		},
		{
			name:     "policy and name",
			unit:     policyB + "746f6b656e",
			expected: domain.AssetID{PolicyID: policyB, Name: "746f6b656e"},
		},
		{
			name:        "too short",
			unit:        "abcd",
			expectedErr: domain.ErrInvalidAssetUnit,
		},
		{
			name:        "name too long",
			unit:        policyA + strings.Repeat("00", 33),
			expectedErr: domain.ErrInvalidAssetName,
		},
		{
			name:        "not hex",
			unit:        strings.Repeat("zz", 28),
			expectedErr: domain.ErrInvalidPolicyID,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := domain.ParseAssetUnit(tt.unit)
			if tt.expectedErr != nil {
				require.True(t, errors.Is(err, tt.expectedErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, id)
			require.Equal(t, tt.unit, id.Unit())
		})
	}
}

func TestParseUtxoKey(t *testing.T) {
	t.Parallel()

	hash := strings.Repeat("0f", 32)
	key, err := domain.ParseUtxoKey(hash + "#3")
	require.NoError(t, err)
	require.Equal(t, domain.UtxoKey{TxHash: hash, TxIndex: 3}, key)
	require.Equal(t, hash+"#3", key.String())
	require.Len(t, key.Hash(), 40)

	_, err = domain.ParseUtxoKey(hash)
	require.ErrorIs(t, err, domain.ErrInvalidUtxoKey)

	_, err = domain.ParseUtxoKey("abcd#1")
	require.ErrorIs(t, err, domain.ErrInvalidTxHash)
}

func TestParseTxChainingMode(t *testing.T) {
	t.Parallel()

	for _, mode := range []domain.TxChainingMode{
		domain.TxChainingNone, domain.TxChainingFilter, domain.TxChainingChain,
	} {
		parsed, err := domain.ParseTxChainingMode(strings.ToUpper(mode.String()))
		require.NoError(t, err)
		require.Equal(t, mode, parsed)
	}

	_, err := domain.ParseTxChainingMode("relay")
	require.ErrorIs(t, err, domain.ErrUnknownTxChainingMode)
}
