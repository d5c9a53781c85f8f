package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdaAmounts(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.000000", formatAda(0))
	require.Equal(t, "1.500000", formatAda(1_500_000))
	require.Equal(t, "45000000.000001", formatAda(45_000_000_000_001))

	tests := []struct {
		ada      string
		lovelace uint64
	}{
		{"4", 4_000_000},
		{"1.5", 1_500_000},
		{"0.000001", 1},
	}
	for _, tt := range tests {
		lovelace, err := parseAda(tt.ada)
		require.NoError(t, err)
		require.Equal(t, tt.lovelace, lovelace)
	}

	for _, ada := range []string{"", "one", "-1", "0.0000001"} {
		_, err := parseAda(ada)
		require.Error(t, err, ada)
	}
}

func TestParseUtxoKeys(t *testing.T) {
	t.Parallel()

	hash := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	keys, err := parseUtxoKeys([]string{hash + "#0", hash + "#3"})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.Equal(t, uint32(3), keys[1].TxIndex)

	_, err = parseUtxoKeys(nil)
	require.Error(t, err)

	_, err = parseUtxoKeys([]string{"invalid"})
	require.Error(t, err)
}
