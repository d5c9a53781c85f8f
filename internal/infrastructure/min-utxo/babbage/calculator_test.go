package babbage_minutxo_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	babbage_minutxo "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/min-utxo/babbage"
	cborserializer "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/serializer/cbor"
)

var address = "61" + strings.Repeat("ab", 28)

func TestMinUtxoLovelace(t *testing.T) {
	t.Parallel()

	serializer, err := cborserializer.NewTxSerializer()
	require.NoError(t, err)
	calculator := babbage_minutxo.NewMinUtxoCalculator(
		domain.DefaultCoinsPerUtxoByte, serializer,
	)

	adaOnly := domain.TransactionOutput{Address: address}
	// 35 bytes with a zero coin, 39 once the coin takes 5 bytes.
	require.Equal(t, uint64((160+39)*4310), calculator.MinUtxoLovelace(adaOnly))

	adaOnly.Value.Lovelace = 5_000_000
	require.Equal(t, uint64((160+39)*4310), calculator.MinUtxoLovelace(adaOnly))

	withAssets := domain.TransactionOutput{Address: address}
	for i, name := range []string{"01", "02", "03"} {
		withAssets.Value.Assets = append(withAssets.Value.Assets, domain.Asset{
			AssetID:  domain.AssetID{PolicyID: strings.Repeat("cc", 28), Name: name},
			Quantity: int64(i + 1),
		})
	}
	require.Greater(
		t, calculator.MinUtxoLovelace(withAssets), calculator.MinUtxoLovelace(adaOnly),
	)
}
