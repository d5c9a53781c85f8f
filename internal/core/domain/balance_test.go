package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

var (
	policyA = strings.Repeat("aa", 28)
	policyB = strings.Repeat("bb", 28)

	tokenA1 = domain.AssetID{PolicyID: policyA, Name: "01"}
	tokenA2 = domain.AssetID{PolicyID: policyA, Name: "02"}
	tokenB1 = domain.AssetID{PolicyID: policyB, Name: "01"}
)

func TestBalanceNormalize(t *testing.T) {
	t.Parallel()

	b := domain.Balance{
		Lovelace: 10,
		Assets: []domain.Asset{
			{tokenA1, 5}, {tokenB1, 3}, {tokenA1, 2}, {tokenA2, 0},
		},
	}.Normalize()

	require.Equal(t, uint64(10), b.Lovelace)
	require.Equal(t, []domain.Asset{{tokenA1, 7}, {tokenB1, 3}}, b.Assets)
}

func TestBalanceAddSub(t *testing.T) {
	t.Parallel()

	a := domain.NewBalance(10, domain.Asset{tokenA1, 5})
	b := domain.NewBalance(4, domain.Asset{tokenA1, 5}, domain.Asset{tokenB1, 1})

	sum := a.Add(b)
	require.Equal(t, uint64(14), sum.Lovelace)
	require.Equal(t, int64(10), sum.AssetQuantity(tokenA1))
	require.Equal(t, int64(1), sum.AssetQuantity(tokenB1))

	diff := a.Sub(b)
	require.Equal(t, uint64(6), diff.Lovelace)
	require.Equal(t, []domain.Asset{{tokenB1, -1}}, diff.Assets)
	require.Equal(t, []domain.Asset{{tokenB1, -1}}, diff.NegativeAssets())
	require.Empty(t, diff.PositiveAssets())

	require.Equal(t, uint64(0), b.Sub(a).Lovelace)
	require.Equal(t, int64(-6), b.LovelaceDelta(a))
}

func TestBalanceQuantity(t *testing.T) {
	t.Parallel()

	b := domain.NewBalance(10, domain.Asset{tokenA1, 5})
	require.Equal(t, int64(10), b.Quantity(nil))
	require.Equal(t, int64(5), b.Quantity(&tokenA1))
	require.Equal(t, int64(0), b.Quantity(&tokenB1))
}

func TestBalanceEqual(t *testing.T) {
	t.Parallel()

	a := domain.NewBalance(1, domain.Asset{tokenA1, 5}, domain.Asset{tokenB1, 2})
	b := domain.NewBalance(1, domain.Asset{tokenB1, 2}, domain.Asset{tokenA1, 5})
	c := domain.NewBalance(1, domain.Asset{tokenB1, 2})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.True(t, domain.Balance{}.IsZero())
	require.False(t, c.IsZero())
}

func TestBalanceGroupedByPolicy(t *testing.T) {
	t.Parallel()

	b := domain.NewBalance(
		0, domain.Asset{tokenA1, 1}, domain.Asset{tokenB1, 1},
		domain.Asset{tokenA2, 1},
	)
	grouped := b.GroupedByPolicy()
	require.Equal(t, []domain.AssetID{tokenA1, tokenA2, tokenB1}, domain.Balance{
		Assets: grouped,
	}.AssetIDs())

	require.Equal(
		t, []domain.AssetID{tokenA1, tokenA2, tokenB1}, b.SortedAssetIDs(),
	)
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	utxos := []domain.Utxo{
		{Balance: domain.NewBalance(3, domain.Asset{tokenA1, 1})},
		{Balance: domain.NewBalance(4, domain.Asset{tokenA1, 2})},
	}
	outputs := []domain.TransactionOutput{
		{Value: domain.NewBalance(5)},
		{Value: domain.NewBalance(2, domain.Asset{tokenA1, 3})},
	}

	require.True(t, domain.AggregateUtxos(utxos).Equal(domain.AggregateOutputs(outputs)))
}
