package domain_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

func encodeAddress(t *testing.T, header byte) string {
	buf := append([]byte{header}, make([]byte, 28)...)
	data, err := bech32.ConvertBits(buf, 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode("addr", data)
	require.NoError(t, err)
	return addr
}

func TestIsSmartContractAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   byte
		expected bool
	}{
		{"key enterprise", 0x61, false},
		{"script enterprise", 0x71, true},
		{"script pointer", 0x51, true},
		{"key pointer", 0x41, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addr := encodeAddress(t, tt.header)
			require.Equal(t, tt.expected, domain.IsSmartContractAddress(addr))
		})
	}

	require.False(t, domain.IsSmartContractAddress("not an address"))
}
